// Package eventconfig reads the YAML file that describes an event: the
// competing teams and the challenge templates every team receives.
package eventconfig

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Event struct {
	Teams      []Team      `yaml:"teams"`
	Challenges []Challenge `yaml:"challenges"`
}

type Team struct {
	Name       string   `yaml:"name"`
	Members    []string `yaml:"members"`
	Color      string   `yaml:"color"`
	SecretCode string   `yaml:"secret_code"`
}

type Challenge struct {
	Name          string  `yaml:"name"`
	Description   string  `yaml:"description"`
	PauseDistance *bool   `yaml:"pause_distance"`
	Latitude      float64 `yaml:"latitude"`
	Longitude     float64 `yaml:"longitude"`
}

// PausesDistance defaults to true when the field is omitted.
func (c Challenge) PausesDistance() bool {
	return c.PauseDistance == nil || *c.PauseDistance
}

// Parse decodes and validates an event document. Unknown fields are rejected.
func Parse(r io.Reader) (Event, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var ev Event
	if err := dec.Decode(&ev); err != nil {
		if errors.Is(err, io.EOF) {
			return Event{}, errors.New("event document is empty")
		}
		return Event{}, fmt.Errorf("decoding event: %w", err)
	}
	if err := ev.Validate(); err != nil {
		return Event{}, err
	}
	return ev, nil
}

func ParseBytes(b []byte) (Event, error) {
	return Parse(bytes.NewReader(b))
}

func Load(path string) (Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return Event{}, fmt.Errorf("opening event file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Validate trims string fields and checks uniqueness of team names and
// secret codes.
func (ev *Event) Validate() error {
	var errs []error
	names := map[string]bool{}
	codes := map[string]bool{}

	for i := range ev.Teams {
		t := &ev.Teams[i]
		t.Name = strings.TrimSpace(t.Name)
		t.SecretCode = strings.TrimSpace(t.SecretCode)
		t.Color = strings.TrimSpace(t.Color)
		switch {
		case t.Name == "":
			errs = append(errs, fmt.Errorf("teams[%d]: name is required", i))
		case names[strings.ToLower(t.Name)]:
			errs = append(errs, fmt.Errorf("teams[%d]: duplicate name %q", i, t.Name))
		}
		names[strings.ToLower(t.Name)] = true
		switch {
		case t.SecretCode == "":
			errs = append(errs, fmt.Errorf("teams[%d]: secret_code is required", i))
		case codes[t.SecretCode]:
			errs = append(errs, fmt.Errorf("teams[%d]: duplicate secret_code", i))
		}
		codes[t.SecretCode] = true
		if t.Color == "" {
			t.Color = "gray"
		}
	}

	for i := range ev.Challenges {
		c := &ev.Challenges[i]
		c.Name = strings.TrimSpace(c.Name)
		if c.Name == "" {
			errs = append(errs, fmt.Errorf("challenges[%d]: name is required", i))
		}
		if c.Latitude < -90 || c.Latitude > 90 {
			errs = append(errs, fmt.Errorf("challenges[%d]: latitude %v out of range", i, c.Latitude))
		}
		if c.Longitude < -180 || c.Longitude > 180 {
			errs = append(errs, fmt.Errorf("challenges[%d]: longitude %v out of range", i, c.Longitude))
		}
	}

	return errors.Join(errs...)
}
