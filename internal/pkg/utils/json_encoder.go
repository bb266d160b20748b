package utils

import (
	"encoding/json"
)

func JsonDecodeByteStream[T any](data []byte) (*T, error) {
	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, err
	}
	return &value, nil
}
