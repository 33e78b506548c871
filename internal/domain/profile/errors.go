package profile

import "errors"

var ErrNoAvatar = errors.New("avatar file is required")
