package models

import "errors"

var errNilSessionID = errors.New("session id must not be the nil uuid")
