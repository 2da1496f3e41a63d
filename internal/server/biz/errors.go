package biz

import (
	"errors"
)

var (
	ErrAnonymousUnauthorized = errors.New("anonymous caller is not authorized")
	ErrTokenNotFound         = errors.New("analytics token not found")
	ErrTokenExpired          = errors.New("analytics token expired")
	ErrInvalidJWT            = errors.New("invalid jwt token")
	ErrAttributeAccessDenied = errors.New("attribute access denied")
	ErrNoEntitlement         = errors.New("no entitlement for dataset")
	ErrDatasetNotFound       = errors.New("dataset not found")
	ErrNotOwner              = errors.New("caller is not the dataset owner")
	ErrNotProducer           = errors.New("caller is not an enabled producer of the dataset")
	ErrInvalidDataset        = errors.New("invalid dataset")
	ErrSchemaImmutable       = errors.New("dataset dimensions cannot change once entries exist")
)
