package constants

import (
	"crypto/tls"
	"time"
)

const (
	DefaultHTTPTimeout   = 30 * time.Second
	DefaultMinTLSVersion = tls.VersionTLS12
)

var (
	HTTPScheme       = "http"
	HTTPSecureScheme = "https"
)

// Wire names shared by the request builders, the record parser and the
// fake service used in tests.
const (
	PrimaryKeySuffix = "ID"

	CriteriaTag       = "_criteria"
	RelationshipAttr  = "relationship"
	OperatorAttr      = "operator"
	ErrorPolicyTag    = "_error"
	LoadAllTag        = "_loadAll"
	LookupCaptionsTag = "_includeLookupCaptions"
	DeletedHiddenTag  = "_loadDeletedAndHiddenRecords"
	TopTag            = "_top"
	PageIndexTag      = "_pageIndex"
	PageSizeTag       = "_pageSize"
	RelatedTablesTag  = "_relatedTables"
	OrderByTag        = "_orderBy"
	FieldsTag         = "_fields"

	GenericRecordTag = "Record"
	QueryTag         = "Query"
	ReportTag        = "Report"
	ErrorTag         = "Error"
	ErrorMessageTag  = "Message"

	DateTimeLayout = "2006-01-02T15:04:05"
)
