package domain

// Department is an organizational unit service requests are routed to.
type Department struct {
	ID          int64
	Name        string
	Description string
}
