package apiobject

import (
	"context"
	"fmt"
	"strings"

	"github.com/apiobject/apiobject.go/pkg/constants"
	"github.com/apiobject/apiobject.go/pkg/criteria"
	"github.com/apiobject/apiobject.go/pkg/models"
	"github.com/apiobject/apiobject.go/pkg/request"
)

// GetReport runs the report named (or numbered) nameOrID. The filter, which
// may be nil, carries the report parameters.
//
// Rows come back as generic Record elements; services that name rows after
// the report are understood as well.
func (c *Client) GetReport(ctx context.Context, nameOrID string, filter criteria.Node) ([]*models.Record, error) {
	if strings.TrimSpace(nameOrID) == "" || strings.Contains(nameOrID, "/") {
		return nil, fmt.Errorf("%w: report %q", constants.ErrInvalidArgument, nameOrID)
	}
	if filter != nil {
		if err := filter.Validate(); err != nil {
			return nil, err
		}
	}

	res, err := c.send(ctx, request.Path(request.OpGetReport, nameOrID), request.Report(filter))
	if err != nil {
		return nil, err
	}

	records, err := models.ParseRecordsBytes(res.Body, constants.GenericRecordTag, c)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		records, err = models.ParseRecordsBytes(res.Body, nameOrID, c)
		if err != nil {
			return nil, err
		}
	}

	c.log.Debug().Str("report", nameOrID).Int("records", len(records)).Msg("report loaded")

	return records, nil
}

// RunFreeformQuery runs a raw query and returns its Record rows.
func (c *Client) RunFreeformQuery(ctx context.Context, text string) ([]*models.Record, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty query", constants.ErrInvalidArgument)
	}

	res, err := c.send(ctx, request.Path(request.OpQuery, ""), request.Query(text))
	if err != nil {
		return nil, err
	}

	records, err := models.ParseRecordsBytes(res.Body, constants.GenericRecordTag, c)
	if err != nil {
		return nil, err
	}

	c.log.Debug().Int("records", len(records)).Msg("query done")

	return records, nil
}

// CheckInOut toggles the checked-in state of a time entry.
func (c *Client) CheckInOut(ctx context.Context, entryID int) error {
	if err := checkID(entryID); err != nil {
		return err
	}

	_, err := c.send(ctx, request.CheckInOutPath(entryID), nil)
	return err
}
