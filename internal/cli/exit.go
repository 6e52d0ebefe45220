package cli

import (
	"errors"

	"github.com/tasker-systems/tasker-cli/internal/config"
	"github.com/tasker-systems/tasker-cli/internal/registry"
	"github.com/tasker-systems/tasker-cli/internal/render"
	"github.com/tasker-systems/tasker-cli/internal/writer"
)

// Exit codes are part of the CLI contract; scripts depend on them.
const (
	ExitOK         = 0
	ExitConfig     = 1 // configuration error (also the generic failure code)
	ExitNotFound   = 2 // no matching template
	ExitAmbiguous  = 3 // more than one matching template
	ExitParameter  = 4 // parameter validation failure
	ExitPathSafety = 5 // output path safety violation
	ExitCollision  = 6 // two outputs expanded to the same destination
	ExitWrite      = 7 // I/O failure while writing rendered output
)

// ExitCode classifies an error returned by Execute into the documented
// exit codes. Unrecognized errors map to the generic failure code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var (
		cfgErr  *config.Error
		resErr  *registry.ResolutionError
		parErr  *render.ParameterError
		pathErr *render.PathSafetyError
		colErr  *render.CollisionError
		wrErr   *writer.Error
	)

	switch {
	case errors.As(err, &cfgErr):
		return ExitConfig
	case errors.As(err, &resErr):
		if resErr.Ambiguous {
			return ExitAmbiguous
		}
		return ExitNotFound
	case errors.As(err, &parErr):
		return ExitParameter
	case errors.As(err, &pathErr):
		return ExitPathSafety
	case errors.As(err, &colErr):
		return ExitCollision
	case errors.As(err, &wrErr):
		return ExitWrite
	}
	return ExitConfig
}
