package log

// Field names shared by every component, so that log queries can rely on
// one spelling.
const (
	FieldComponent     = "component"
	FieldRequestID     = "request_id"
	FieldClientIP      = "client_ip"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldQuery         = "query"
	FieldStatusCode    = "status_code"
	FieldDuration      = "duration_ms"
	FieldDurationHuman = "duration_human"
	FieldUserAgent     = "user_agent"
	FieldSuccess       = "success"
	FieldError         = "error"
	FieldOperation     = "operation"
	FieldUser          = "user"
	FieldMonth         = "month"
	FieldItemCount     = "item_count"
	FieldTotalPlanned  = "total_planned"
	FieldTotalActual   = "total_actual"
)

const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentLedger   = "ledger"
	ComponentAuth     = "auth"
	ComponentAMQP     = "amqp"
	ComponentCache    = "cache"
	ComponentSecurity = "security"
	ComponentBackend  = "backend"
)

const (
	OpLogin    = "login"
	OpPlan     = "plan"
	OpActual   = "actual"
	OpShutdown = "shutdown"
)

// Fields is an ordered list of key/value pairs for slog. Keys appear in
// the record in the order they were added.
type Fields []any

// Add appends one key/value pair.
func (f Fields) Add(key string, value any) Fields {
	return append(f, key, value)
}

// Error records err's message; a nil err adds nothing.
func (f Fields) Error(err error) Fields {
	if err == nil {
		return f
	}
	return append(f, FieldError, err.Error())
}

// Ledger identifies the month ledger an operation touched.
func (f Fields) Ledger(user, month string) Fields {
	return append(f, FieldUser, user, FieldMonth, month)
}

// Totals records a ledger's derived totals after a write.
func (f Fields) Totals(planned, actual float64) Fields {
	return append(f, FieldTotalPlanned, planned, FieldTotalActual, actual)
}

// Request records the parts of r worth keeping, plus the request ID and
// the resolved client address.
func (f Fields) Request(method, path, query, requestID, clientIP string) Fields {
	f = append(f, FieldRequestID, requestID, FieldMethod, method, FieldPath, path)
	if query != "" {
		f = append(f, FieldQuery, query)
	}
	if clientIP != "" {
		f = append(f, FieldClientIP, clientIP)
	}
	return f
}
