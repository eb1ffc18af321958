package log

import "sort"

// Common field names for structured logging
const (
	FieldComponent    = "component"
	FieldRequestID    = "request_id"
	FieldClientIP     = "client_ip"
	FieldMethod       = "method"
	FieldPath         = "path"
	FieldQuery        = "query"
	FieldStatusCode   = "status_code"
	FieldDuration     = "duration_ms"
	FieldSuccess      = "success"
	FieldError        = "error"
	FieldOperation    = "operation"
	FieldSource       = "source"
	FieldRows         = "rows"
	FieldDroppedRows  = "dropped_rows"
	FieldTransactions = "transactions"
	FieldBudget       = "budget"
	FieldSpend        = "spend"
	FieldBasis        = "basis"
	FieldMonths       = "months"
	FieldGoal         = "goal"
	FieldFeasible     = "feasible"
	FieldReportID     = "report_id"
	FieldProvider     = "provider"
	FieldModel        = "model"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentIngest    = "ingest"
	ComponentEngine    = "engine"
	ComponentExplain   = "explain"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentCache     = "cache"
	ComponentSecurity  = "security"
	ComponentRateLimit = "rate_limit"
	ComponentTrace     = "trace"
)

// Operations defines standard operation names
const (
	OpAnalyze  = "analyze"
	OpExplain  = "explain"
	OpArchive  = "archive"
	OpPublish  = "publish"
	OpConsume  = "consume"
	OpList     = "list"
	OpParse    = "parse"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithClientIP adds client IP field
func (f LogFields) WithClientIP(ip string) LogFields {
	if ip != "" {
		f[FieldClientIP] = ip
	}
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

// WithAnalysis adds the headline numbers of an analysis run. Amounts are
// passed preformatted so the logger never rounds money itself.
func (f LogFields) WithAnalysis(budget, spend, basis string, months, transactions int) LogFields {
	f[FieldBudget] = budget
	f[FieldSpend] = spend
	f[FieldBasis] = basis
	f[FieldMonths] = months
	f[FieldTransactions] = transactions
	return f
}

// WithGoal adds goal fields
func (f LogFields) WithGoal(label string, feasible bool) LogFields {
	f[FieldGoal] = label
	f[FieldFeasible] = feasible
	return f
}

// WithHTTPRequest adds HTTP request fields
func (f LogFields) WithHTTPRequest(method, path, query string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	if query != "" {
		f[FieldQuery] = query
	}
	return f
}

// WithHTTPResponse adds HTTP response fields
func (f LogFields) WithHTTPResponse(statusCode int, durationMs int64, success bool) LogFields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	f[FieldSuccess] = success
	return f
}

// ToSlice converts LogFields to a key/value slice for slog, ordered by key.
func (f LogFields) ToSlice() []any {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	slice := make([]any, 0, len(f)*2)
	for _, k := range keys {
		slice = append(slice, k, f[k])
	}
	return slice
}
