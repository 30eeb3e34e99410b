package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldQuery      = "query"
	FieldUserAgent  = "user_agent"
	FieldReferer    = "referer"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldDivision   = "division"
	FieldDistrict   = "district"
	FieldTaluka     = "taluka"
	FieldYear       = "year"
	FieldMonth      = "month"
	FieldSnapshotID = "snapshot_id"
	FieldSource     = "source"
	FieldRecords    = "records"
	FieldCacheHit   = "cache_hit"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentDashboard = "dashboard"
	ComponentDataset   = "dataset"
	ComponentWorker    = "worker"
	ComponentCache     = "cache"
	ComponentSecurity  = "security"
	ComponentTrace     = "trace"
	ComponentBackend   = "backend"
	ComponentTemplate  = "template"
)

// Operations defines standard operation names
const (
	OpImport = "import"
	OpDerive = "derive"
	OpRender = "render"
)

// ErrorTypeConfiguration tags failures caused by deployment setup rather
// than by a request.
const ErrorTypeConfiguration = "configuration_error"

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithFilters adds the non-empty dashboard filter values
func (f LogFields) WithFilters(division, district, taluka, year, month string) LogFields {
	for k, v := range map[string]string{
		FieldDivision: division,
		FieldDistrict: district,
		FieldTaluka:   taluka,
		FieldYear:     year,
		FieldMonth:    month,
	} {
		if v != "" {
			f[k] = v
		}
	}
	return f
}

// WithSnapshot adds dataset snapshot fields
func (f LogFields) WithSnapshot(id, source string, records int) LogFields {
	f[FieldSnapshotID] = id
	f[FieldSource] = source
	f[FieldRecords] = records
	return f
}

// WithHTTPRequest adds HTTP request fields
func (f LogFields) WithHTTPRequest(method, path, query, userAgent, referer string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	f[FieldQuery] = query
	f[FieldUserAgent] = userAgent
	f[FieldReferer] = referer
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
