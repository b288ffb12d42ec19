package models

import (
	"errors"
)

var (
	ErrNoOptions                = errors.New("no initialized model options")
	ErrNoTrainingMatrix         = errors.New("no training matrix")
	ErrNoTargetMatrix           = errors.New("no target matrix")
	ErrNoDesignMatrix           = errors.New("no design matrix for inference")
	ErrTargetLenMismatch        = errors.New("target length does not match training rows")
	ErrFeatureLenMismatch       = errors.New("number of features does not match fitted model")
	ErrUntrainedModel           = errors.New("model has not been fit yet")
	ErrInsufficientTrainingData = errors.New("training set has fewer than 2 distinct feature rows")
)
