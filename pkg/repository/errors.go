package repository

import (
	"errors"
	"fmt"

	"github.com/ngolasuite/ngola/pkg/datastore"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("already exists")
	ErrCorruptRow = errors.New("stored row cannot be mapped")
)

// wrap names the failing operation and adds the repository sentinel that
// matches the datastore code. The datastore error stays in the chain.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	switch datastore.CodeOf(err) {
	case datastore.CodeNotFound:
		return fmt.Errorf("%s: %w", op, errors.Join(ErrNotFound, err))
	case datastore.CodeConflict:
		return fmt.Errorf("%s: %w", op, errors.Join(ErrConflict, err))
	}
	return fmt.Errorf("%s: %w", op, err)
}
