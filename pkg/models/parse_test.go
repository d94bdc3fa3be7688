package models

import (
	"testing"

	"github.com/apiobject/apiobject.go/pkg/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRecords(t *testing.T) {
	records := mustParseContacts(t)

	assert.Equal(t, "Contact", records[0].TableName())
	assert.Equal(t, []string{"ContactID", "NameFirst", "NameLast", "Birthday", "Tag", "Phone"}, records[0].Fields())
	assert.False(t, records[0].IsDirty())

	id, err := records[1].ID()
	require.NoError(t, err)
	assert.Equal(t, 43, id)
}

func TestParseRecords_rootIsRecord(t *testing.T) {
	records, err := ParseRecordsBytes([]byte(`<Contact><ContactID></ContactID><NameLast/></Contact>`), "Contact", nil)
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.True(t, records[0].HasField("NameLast"))
	_, err = records[0].ID()
	assert.ErrorIs(t, err, constants.ErrMissingPrimaryKey)
}

func TestParseRecords_noMatches(t *testing.T) {
	records, err := ParseRecordsBytes([]byte(`<Contacts/>`), "Contact", nil)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestParseRecords_invalid(t *testing.T) {
	_, err := ParseRecordsBytes([]byte(`<Contacts>`), "Contact", nil)
	assert.ErrorIs(t, err, constants.ErrInvalidResponse)

	_, err = ParseRecordsBytes([]byte(``), "Contact", nil)
	assert.ErrorIs(t, err, constants.ErrInvalidResponse)
}
