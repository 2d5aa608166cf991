package model

import "errors"

var (
	ErrPersonNotFound = errors.New("person not found")
	ErrFaceNotFound   = errors.New("face not found")
	ErrNoThumbnail    = errors.New("person has no thumbnail")
)
