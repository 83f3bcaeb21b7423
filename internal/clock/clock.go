// Package clock resolves the local wall-clock time the schedule is based on.
package clock

import (
	"context"
	"net/http"
	"time"

	"codeberg.org/mutker/solartag/internal/errors"
)

// Source supplies the current local time.
type Source interface {
	Now(ctx context.Context) (time.Time, error)
}

// LoadLocation resolves an IANA zone name. An empty name is UTC.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, errors.New().Wrap(errors.ErrInvalidTimezone, err)
	}

	return loc, nil
}

type systemSource struct {
	loc *time.Location
	now func() time.Time
}

// NewSystem reads the host clock, which is assumed to be synchronized.
func NewSystem(loc *time.Location) Source {
	return &systemSource{loc: loc, now: time.Now}
}

func (s *systemSource) Now(_ context.Context) (time.Time, error) {
	return s.now().In(s.loc), nil
}

type httpSource struct {
	url    string
	loc    *time.Location
	client *http.Client
}

// NewHTTP takes the time from the Date header of a HEAD request to url.
// Second resolution is plenty for an hour-granular schedule.
func NewHTTP(url string, loc *time.Location, client *http.Client) Source {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	return &httpSource{url: url, loc: loc, client: client}
}

func (s *httpSource) Now(ctx context.Context) (time.Time, error) {
	errFactory := errors.New()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, s.url, nil)
	if err != nil {
		return time.Time{}, errFactory.Wrap(errors.ErrTimeSync, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return time.Time{}, errFactory.Wrap(errors.ErrTimeSync, err)
	}
	_ = resp.Body.Close()

	date := resp.Header.Get("Date")
	if date == "" {
		return time.Time{}, errFactory.WithData(errors.ErrTimeSync, "no Date header")
	}

	t, err := http.ParseTime(date)
	if err != nil {
		return time.Time{}, errFactory.Wrap(errors.ErrTimeSync, err)
	}

	return t.In(s.loc), nil
}

// Hour resolves the current local hour from src.
func Hour(ctx context.Context, src Source) (int, error) {
	t, err := src.Now(ctx)
	if err != nil {
		return 0, err
	}

	return t.Hour(), nil
}
