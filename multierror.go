package unixfs

import "github.com/hashicorp/go-multierror"

// joinErrors aggregates zero or more errors collected during a best-effort
// cleanup pass (e.g. freeing every block of a file being removed) into a
// single error, or nil if errs is empty.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	var result *multierror.Error
	for _, e := range errs {
		result = multierror.Append(result, e)
	}
	return result.ErrorOrNil()
}
