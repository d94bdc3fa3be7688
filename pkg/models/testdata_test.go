package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const contactXML = `<?xml version="1.0" encoding="UTF-8"?>
<Contacts>
  <Contact>
    <ContactID>42</ContactID>
    <NameFirst>Ada</NameFirst>
    <NameLast>Lovelace</NameLast>
    <Birthday>1815-12-10T00:00:00</Birthday>
    <Tag>a</Tag>
    <Tag>b</Tag>
    <Phone>
      <PhoneID>7</PhoneID>
      <Number>555-0100</Number>
      <Kind>Home</Kind>
    </Phone>
    <Phone>
      <PhoneID>8</PhoneID>
      <Number>555-0101</Number>
      <Kind>Work</Kind>
    </Phone>
  </Contact>
  <Contact>
    <ContactID>43</ContactID>
    <NameFirst>Charles</NameFirst>
    <NameLast>Babbage</NameLast>
  </Contact>
</Contacts>`

func mustParseContacts(t *testing.T) []*Record {
	t.Helper()

	records, err := ParseRecordsBytes([]byte(contactXML), "Contact", nil)
	require.NoError(t, err)
	require.Len(t, records, 2)

	return records
}
