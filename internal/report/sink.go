package report

import (
	"context"
	"errors"
	"fmt"
)

// ServiceNamespace is the service namespace report sinks register under,
// e.g. "report.csv".
const ServiceNamespace = "report"

// Sink persists a finished report.
type Sink interface {
	Name() string
	WriteReport(ctx context.Context, r *Report) error
}

// SinksFrom keeps the services that implement Sink.
func SinksFrom(services []any) []Sink {
	var sinks []Sink
	for _, svc := range services {
		if s, ok := svc.(Sink); ok {
			sinks = append(sinks, s)
		}
	}
	return sinks
}

// Publish hands r to every sink. A failing sink does not stop the others;
// all failures are returned joined.
func Publish(ctx context.Context, r *Report, sinks []Sink) error {
	var errs []error
	for _, s := range sinks {
		if err := s.WriteReport(ctx, r); err != nil {
			errs = append(errs, fmt.Errorf("report: sink %s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}
