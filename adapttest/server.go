// Package adapttest provides test doubles for the adapt package: a canned
// ServerContext and a deterministic generator of fake values for round-trip
// testing.
package adapttest

// Server is a canned adapt.ServerContext: a fixed parameter map standing in
// for a live session's status reports.
type Server struct {
	Parameters map[string]string
}

func (s Server) ParameterStatus(name string) string {
	return s.Parameters[name]
}

// NewServer returns a Server with the reports of a stock PostgreSQL 14
// session, overlaid with params.
func NewServer(params map[string]string) Server {
	base := map[string]string{
		"DateStyle":       "ISO, MDY",
		"IntervalStyle":   "postgres",
		"TimeZone":        "UTC",
		"client_encoding": "UTF8",
		"server_version":  "14.4",
	}
	for k, v := range params {
		base[k] = v
	}
	return Server{Parameters: base}
}
