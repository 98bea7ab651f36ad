package service

import (
	"errors"
	"fmt"

	"github.com/prperemyshlev/wms-server/internal/repository"
)

var repositoryErrors = []struct {
	repo error
	svc  error
}{
	{repository.ErrNotFound, ErrNotFound},
	{repository.ErrDuplicateEmail, ErrDuplicateEmail},
	{repository.ErrDuplicateNickname, ErrDuplicateNickname},
	{repository.ErrDuplicateProvider, ErrDuplicateEmail},
	{repository.ErrDuplicateItemCode, ErrDuplicateItemCode},
	{repository.ErrDuplicateOrderNumber, ErrDuplicateOrderNumber},
	{repository.ErrInsufficientQuantity, ErrInsufficientStock},
	{repository.ErrTokenConsumed, ErrInvalidRefreshToken},
	{repository.ErrStatusChanged, ErrInvalidOrderTransition},
}

// translate tags a repository error with the matching business error, keeping the original chain
func translate(err error, msg string) error {
	if err == nil {
		return nil
	}
	for _, m := range repositoryErrors {
		if errors.Is(err, m.repo) {
			return fmt.Errorf("%s: %w: %w", msg, m.svc, err)
		}
	}
	return fmt.Errorf("%s: %w", msg, err)
}
