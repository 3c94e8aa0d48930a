// Package address decides whether a recipient address may be sent to.
package address

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/jmehdipour/email-dispatch/internal/util"
)

type Verdict int

const (
	VerdictEligible Verdict = iota
	VerdictInvalid
	VerdictShadyProvider
	VerdictBlacklisted
)

func (v Verdict) String() string {
	switch v {
	case VerdictEligible:
		return "eligible"
	case VerdictInvalid:
		return "invalid"
	case VerdictShadyProvider:
		return "shady_provider"
	case VerdictBlacklisted:
		return "blacklisted"
	default:
		return fmt.Sprintf("verdict(%d)", int(v))
	}
}

// Classifier reports whether a recipient domain is untrustworthy.
type Classifier interface {
	IsShadyProvider(ctx context.Context, domain string) (bool, error)
}

// Blacklist reports whether an address is explicitly denied.
type Blacklist interface {
	IsBlacklisted(ctx context.Context, addr string) (bool, error)
}

type Validator struct {
	validate   *validator.Validate
	classifier Classifier
	blacklist  Blacklist
}

// NewValidator wires the checks; a nil classifier or blacklist never matches.
func NewValidator(classifier Classifier, blacklist Blacklist) *Validator {
	if classifier == nil {
		classifier = nopClassifier{}
	}
	if blacklist == nil {
		blacklist = nopBlacklist{}
	}
	return &Validator{
		validate:   validator.New(),
		classifier: classifier,
		blacklist:  blacklist,
	}
}

func (v *Validator) IsValidEmail(addr string) bool {
	return v.validate.Var(addr, "required,email") == nil
}

func (v *Validator) IsShadyProvider(ctx context.Context, addr string) (bool, error) {
	return v.classifier.IsShadyProvider(ctx, util.Domain(addr))
}

func (v *Validator) IsBlacklisted(ctx context.Context, addr string) (bool, error) {
	return v.blacklist.IsBlacklisted(ctx, addr)
}

// Check runs the invalid, shady-provider and blacklist checks in that order
// and stops at the first match.
func (v *Validator) Check(ctx context.Context, addr string) (Verdict, error) {
	if !v.IsValidEmail(addr) {
		return VerdictInvalid, nil
	}

	shady, err := v.IsShadyProvider(ctx, addr)
	if err != nil {
		return VerdictEligible, fmt.Errorf("classify domain: %w", err)
	}
	if shady {
		return VerdictShadyProvider, nil
	}

	listed, err := v.IsBlacklisted(ctx, addr)
	if err != nil {
		return VerdictEligible, fmt.Errorf("blacklist lookup: %w", err)
	}
	if listed {
		return VerdictBlacklisted, nil
	}

	return VerdictEligible, nil
}

type nopClassifier struct{}

func (nopClassifier) IsShadyProvider(context.Context, string) (bool, error) { return false, nil }

type nopBlacklist struct{}

func (nopBlacklist) IsBlacklisted(context.Context, string) (bool, error) { return false, nil }
