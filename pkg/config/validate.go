package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// structValidator checks the `validate` struct tags. A single instance is
// shared so struct metadata is only parsed once.
var structValidator = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration for errors.
//
// Struct tag rules (ports in range, log level oneof, sample rate bounds,
// required paths) are enforced first, then the cross-field rules that tags
// cannot express. Validation never mutates the config; normalization is
// ApplyDefaults' job.
func Validate(cfg *Config) error {
	if err := structValidator.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return fmt.Errorf("invalid configuration: %s", formatValidationErrors(verrs))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.Telemetry.Enabled && cfg.Telemetry.Endpoint == "" {
		return errors.New("invalid configuration: telemetry is enabled but telemetry.endpoint is empty")
	}
	if cfg.Telemetry.Profiling.Enabled && cfg.Telemetry.Profiling.Endpoint == "" {
		return errors.New("invalid configuration: profiling is enabled but telemetry.profiling.endpoint is empty")
	}

	// Both listeners bind at startup; sharing a port can only fail.
	if cfg.FIN.Port != 0 && cfg.FIN.Port == cfg.ControlPlane.Port {
		return fmt.Errorf("invalid configuration: fin.port and controlplane.port are both %d, the listeners need distinct ports", cfg.FIN.Port)
	}

	return nil
}

// formatValidationErrors renders validator errors as one readable line per
// failed field, e.g. "Logging.Level: failed 'oneof' validation".
func formatValidationErrors(errs validator.ValidationErrors) string {
	parts := make([]string, 0, len(errs))
	for _, fe := range errs {
		// Namespace looks like "Config.Logging.Level"; drop the root.
		field := strings.TrimPrefix(fe.Namespace(), "Config.")
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s: failed '%s=%s' validation", field, fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s: failed '%s' validation", field, fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}
