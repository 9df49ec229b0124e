package cli

import (
	"errors"

	"books-search/internal/domain/entity"
	"books-search/internal/usecase/browse"
)

// friendly rewrites session errors into messages for the terminal. Errors
// it does not know are returned unchanged.
func friendly(err error) error {
	var verr *entity.ValidationError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &verr):
		return errors.New(verr.Field + ": " + verr.Message)
	case errors.Is(err, browse.ErrBusy):
		return errors.New("still fetching the previous page, try again in a moment")
	case errors.Is(err, browse.ErrNoQuery):
		return errors.New("nothing searched yet, run 'books search <query>'")
	case errors.Is(err, browse.ErrNotSettled):
		return errors.New("still loading, run 'books view' in a moment")
	}
	return err
}
