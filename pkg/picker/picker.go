// Package picker drives an interactive entity selection in the terminal: it
// asks for a search term, lists matching options and returns the encoded key
// of the chosen one. When tagging is enabled the typed term is offered as a
// new entry encoded with the configured prefix.
package picker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-entityselect/pkg/model"
)

var (
	// ErrAborted is returned when the user interrupts a prompt.
	ErrAborted = errors.New("picker: aborted")
	// ErrNoOptions is returned when a search yields nothing to choose from.
	ErrNoOptions = errors.New("picker: no matching options")
)

// Source lists the options matching query.
type Source func(ctx context.Context, query string) ([]model.Option, error)

// Options configures a Picker.
type Options struct {
	Message  string
	PageSize int
	// AllowNew offers the typed term as a new entry.
	AllowNew     bool
	NewTagPrefix string
	NewTagText   string
}

// Picker runs the search then select flow against a PromptDriver.
type Picker struct {
	driver PromptDriver
	opts   Options
}

// New constructs a Picker. A nil driver selects the survey driver.
func New(driver PromptDriver, opts Options) *Picker {
	if driver == nil {
		driver = NewSurveyDriver()
	}
	if strings.TrimSpace(opts.Message) == "" {
		opts.Message = "Select an entry"
	}
	return &Picker{driver: driver, opts: opts}
}

// Pick prompts for a search term and returns the selected option.
func (p *Picker) Pick(ctx context.Context, src Source) (model.Option, error) {
	if src == nil {
		return model.Option{}, errors.New("picker: nil source")
	}

	query, err := p.driver.Input(ctx, InputConfig{
		Message: "Search",
		Help:    "Leave empty to list the first entries",
	})
	if err != nil {
		return model.Option{}, err
	}
	query = strings.TrimSpace(query)

	found, err := src(ctx, query)
	if err != nil {
		return model.Option{}, fmt.Errorf("picker: search %q: %w", query, err)
	}

	options := append([]model.Option{}, found...)
	if p.opts.AllowNew && query != "" && !hasLabel(found, query) {
		options = append(options, model.Option{
			Value: p.opts.NewTagPrefix + query,
			Label: query + p.opts.NewTagText,
		})
	}
	if len(options) == 0 {
		return model.Option{}, ErrNoOptions
	}

	labels := make([]string, 0, len(options))
	for _, opt := range options {
		labels = append(labels, displayLabel(opt))
	}
	idx, err := p.driver.Select(ctx, SelectConfig{
		Message:  p.opts.Message,
		Options:  labels,
		PageSize: p.opts.PageSize,
	})
	if err != nil {
		return model.Option{}, err
	}
	if idx < 0 || idx >= len(options) {
		return model.Option{}, fmt.Errorf("picker: selection %d out of range", idx)
	}
	return options[idx], nil
}

// Confirm asks a yes/no question through the driver.
func (p *Picker) Confirm(ctx context.Context, message string) (bool, error) {
	return p.driver.Confirm(ctx, ConfirmConfig{Message: message})
}

// survey matches answers by label, so labels must be unique
func displayLabel(opt model.Option) string {
	return fmt.Sprintf("%s [%s]", opt.Label, opt.Value)
}

func hasLabel(options []model.Option, label string) bool {
	for _, opt := range options {
		if strings.EqualFold(opt.Label, label) {
			return true
		}
	}
	return false
}
