package metric

import "errors"

// ErrDispatch indicates at least one sink rejected a sample.
var ErrDispatch = errors.New("metric: dispatch failed")
