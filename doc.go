// The [apiobject] package is a client for a record-oriented XML-over-HTTP
// service.
//
// # Records
//
// Every read returns [models.Record] values. A Record is schema-less: fields
// are whatever the service sent, read with Get and written with Set. Writes
// are tracked per field, so Create and Update send only what changed.
//
// A field is either a scalar or a sub-table (an ordered list of related
// Records), and keeps that shape. Writing to a sub-table field fails.
//
// # Filters and options
//
// Filters are built with the [github.com/apiobject/apiobject.go/pkg/criteria]
// package, e.g.
//
//	criteria.Or(criteria.Equals("NameLast", "Smith"), criteria.Equals("NameLast", "Jones"))
//
// Paging, projection, ordering and related tables are set with the options in
// [github.com/apiobject/apiobject.go/pkg/request].
//
// # Errors
//
// Arguments are checked before anything is sent, and bad ones are reported
// as [constants.ErrInvalidArgument]. A non-2xx response is a
// [*connection.ServiceError]. A request that never got a response wraps
// [constants.ErrTransport].
//
// Whatever the outcome, the last request and response are kept and can be
// read with [Client.LastRequest] and friends.
package apiobject
