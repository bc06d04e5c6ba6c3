package ratelimit

import "errors"

var errUnexpectedResult = errors.New("unexpected rate limit script result")
