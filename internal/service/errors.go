package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/NadavGB86/event-pragmetizer-oss/internal/model"
)

var (
	ErrNotReady           = errors.New("profile is not ready for plan generation")
	ErrEmptyMessage       = errors.New("message is empty")
	ErrNoSelectedPlan     = errors.New("no plan selected")
	ErrPlanNotFound       = errors.New("plan not found")
	ErrPlanChanged        = errors.New("selected plan changed during refinement")
	ErrInvalidState       = errors.New("invalid session state")
	ErrUnsupportedVersion = errors.New("unsupported session state version")
)

// NotReadyError carries the readiness verdict that blocked generation.
type NotReadyError struct {
	Readiness model.ProfileReadiness
}

func (e *NotReadyError) Error() string {
	return fmt.Sprintf("%s: missing %s", ErrNotReady, strings.Join(e.Readiness.MissingCritical, ", "))
}

func (e *NotReadyError) Is(target error) bool {
	return target == ErrNotReady
}
