package domain

import (
	"errors"
	"regexp"
	"strings"
)

const (
	MinMemoryMB = 256
	MaxMemoryMB = 1024
)

var (
	ErrInvalidEmail  = errors.New("invalid email address")
	ErrInvalidTaxID  = errors.New("invalid tax id")
	ErrInvalidName   = errors.New("full name too short")
	ErrInvalidMemory = errors.New("memory must be between 256 and 1024 MB")

	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	taxIDPattern = regexp.MustCompile(`^\d{11}$`)
)

// Validate checks the payer data before it is accepted into a session.
func (p PayerIdentity) Validate() error {
	if len(strings.TrimSpace(p.FullName)) < 3 {
		return ErrInvalidName
	}
	if !emailPattern.MatchString(p.Email) {
		return ErrInvalidEmail
	}
	if !taxIDPattern.MatchString(p.TaxID) {
		return ErrInvalidTaxID
	}
	// All-identical digits pass the shape check but are never valid ids.
	if strings.Count(p.TaxID, string(p.TaxID[0])) == len(p.TaxID) {
		return ErrInvalidTaxID
	}
	return nil
}

// Validate checks the deploy configuration bounds.
func (c DeployConfig) Validate() error {
	if strings.TrimSpace(c.DisplayName) == "" {
		return errors.New("display name required")
	}
	if c.MemoryMB < MinMemoryMB || c.MemoryMB > MaxMemoryMB {
		return ErrInvalidMemory
	}
	return nil
}

// FirstLastName splits a full name into provider-shaped first and last
// parts, each capped at 30 characters.
func (p PayerIdentity) FirstLastName() (string, string) {
	parts := strings.Fields(strings.TrimSpace(p.FullName))
	first := ""
	last := ""
	if len(parts) > 0 {
		first = parts[0]
	}
	if len(parts) > 1 {
		last = strings.Join(parts[1:], " ")
	}
	if last == "" {
		last = "Silva"
	}
	if len(first) > 30 {
		first = first[:30]
	}
	if len(last) > 30 {
		last = last[:30]
	}
	return first, last
}
