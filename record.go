package apiobject

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/apiobject/apiobject.go/pkg/constants"
	"github.com/apiobject/apiobject.go/pkg/criteria"
	"github.com/apiobject/apiobject.go/pkg/models"
	"github.com/apiobject/apiobject.go/pkg/request"
	"github.com/beevik/etree"
)

var _ models.Owner = (*Client)(nil)

// CreateDefault returns a template record for table filled with the
// database defaults. The template has no primary key until it is created.
func (c *Client) CreateDefault(ctx context.Context, table string, includeLookupCaptions bool) (*models.Record, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}

	res, err := c.send(ctx, request.Path(request.OpCreateDefault, table), request.CreateDefault(table, includeLookupCaptions))
	if err != nil {
		return nil, err
	}

	records, err := models.ParseRecordsBytes(res.Body, table, c)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no %s template in response", constants.ErrInvalidResponse, table)
	}

	return records[0], nil
}

// Create persists the changed fields of rec as a new row and returns the key
// the service assigned. On success the key is stored in rec and its changes
// are cleared. If rec's key field cannot hold the key, the row still exists:
// the key is returned together with the error.
func (c *Client) Create(ctx context.Context, rec *models.Record, policy *models.ErrorPolicy) (int, error) {
	if rec == nil {
		return 0, fmt.Errorf("%w: nil record", constants.ErrInvalidArgument)
	}

	table := rec.TableName()
	res, err := c.send(ctx, request.Path(request.OpCreate, table), request.Persist(rec.ReduceToChanges(), policy))
	if err != nil {
		return 0, err
	}

	id, err := assignedID(res.Body, rec.PrimaryKeyField())
	if err != nil {
		return 0, err
	}

	rec.ClearChanges()
	if err := rec.AssignID(id); err != nil {
		c.log.Warn().Err(err).Str("table", table).Int("id", id).Msg("created key not stored in record")
		return id, err
	}
	c.log.Debug().Str("table", table).Int("id", id).Msg("record created")

	return id, nil
}

// Update sends the changed fields of rec. The changes are cleared only when
// the service accepted them, so a failed update can be retried with the
// same diff.
func (c *Client) Update(ctx context.Context, rec *models.Record, policy *models.ErrorPolicy) error {
	if rec == nil {
		return fmt.Errorf("%w: nil record", constants.ErrInvalidArgument)
	}

	id, err := rec.ID()
	if err != nil {
		return err
	}

	table := rec.TableName()
	if _, err := c.send(ctx, request.Path(request.OpUpdate, table, id), request.Persist(rec.ReduceToChanges(), policy)); err != nil {
		return err
	}

	rec.ClearChanges()
	c.log.Debug().Str("table", table).Int("id", id).Msg("record updated")

	return nil
}

// Delete removes rec's row.
func (c *Client) Delete(ctx context.Context, rec *models.Record, policy *models.ErrorPolicy) error {
	if rec == nil {
		return fmt.Errorf("%w: nil record", constants.ErrInvalidArgument)
	}

	id, err := rec.ID()
	if err != nil {
		return err
	}

	return c.DeleteByID(ctx, rec.TableName(), id, policy)
}

// DeleteByID removes the row id of table.
func (c *Client) DeleteByID(ctx context.Context, table string, id int, policy *models.ErrorPolicy) error {
	if err := checkTable(table); err != nil {
		return err
	}
	if err := checkID(id); err != nil {
		return err
	}

	if _, err := c.send(ctx, request.Path(request.OpDelete, table, id), request.Delete(table, policy)); err != nil {
		return err
	}

	c.log.Debug().Str("table", table).Int("id", id).Msg("record deleted")

	return nil
}

// SelectByID returns the row id of table, or constants.ErrRecordNotFound.
func (c *Client) SelectByID(ctx context.Context, table string, id int, opts ...request.Option) (*models.Record, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	if err := checkID(id); err != nil {
		return nil, err
	}

	records, err := c.selectRecords(ctx, request.Path(request.OpSelect, table, id), table, nil, opts, false)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s %d", constants.ErrRecordNotFound, table, id)
	}

	return records[0], nil
}

// SelectAll returns every row of table. Without options the request carries
// an explicit load-all marker.
func (c *Client) SelectAll(ctx context.Context, table string, opts ...request.Option) ([]*models.Record, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}

	return c.selectRecords(ctx, request.Path(request.OpSelect, table), table, nil, opts, true)
}

// SelectByCriteria returns the rows of table matching filter.
func (c *Client) SelectByCriteria(ctx context.Context, table string, filter criteria.Node, opts ...request.Option) ([]*models.Record, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	if filter == nil {
		return nil, fmt.Errorf("%w: nil filter", constants.ErrInvalidArgument)
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	return c.selectRecords(ctx, request.Path(request.OpSelect, table), table, filter, opts, false)
}

func (c *Client) selectRecords(
	ctx context.Context,
	path []string,
	table string,
	filter criteria.Node,
	opts []request.Option,
	loadAllWhenEmpty bool,
) ([]*models.Record, error) {
	doc := request.Select(table, filter, request.NewQueryOptions(opts...), loadAllWhenEmpty)

	res, err := c.send(ctx, path, doc)
	if err != nil {
		return nil, err
	}

	records, err := models.ParseRecordsBytes(res.Body, table, c)
	if err != nil {
		return nil, err
	}

	c.log.Debug().Str("table", table).Int("records", len(records)).Msg("records selected")

	return records, nil
}

// assignedID finds the new key in a create response: the first element
// named after the key field, or else the root text.
func assignedID(body []byte, keyField string) (int, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return 0, fmt.Errorf("%w: %w", constants.ErrInvalidResponse, err)
	}
	if doc.Root() == nil {
		return 0, fmt.Errorf("%w: empty document", constants.ErrInvalidResponse)
	}

	text := strings.TrimSpace(doc.Root().Text())
	if el := doc.FindElement("//" + keyField); el != nil {
		text = strings.TrimSpace(el.Text())
	}

	id, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("%w: no %s in create response", constants.ErrMissingPrimaryKey, keyField)
	}

	return id, nil
}

func checkTable(table string) error {
	if strings.TrimSpace(table) == "" {
		return fmt.Errorf("%w: empty table name", constants.ErrInvalidArgument)
	}
	if strings.ContainsAny(table, " /<>&\"'") {
		return fmt.Errorf("%w: table name %q", constants.ErrInvalidArgument, table)
	}
	return nil
}

func checkID(id int) error {
	if id < 0 {
		return fmt.Errorf("%w: negative id %d", constants.ErrInvalidArgument, id)
	}
	return nil
}
