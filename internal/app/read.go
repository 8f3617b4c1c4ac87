package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

var errEmptyContent = errors.New("no reader content error")

func Read(reader io.ReadCloser) ([]byte, error) {
	var err error

	defer func() {
		err = (reader).Close()
		if err != nil {
			slog.Error(fmt.Sprintf("Error occured: %s", err.Error()))
		}
	}()

	var content []byte
	content, err = io.ReadAll(reader)

	if err != nil {
		return nil, err
	}

	return content, nil
}

// ReadJSON decodes content into a new T. Empty content and a JSON null are
// both errors since neither carries a value.
func ReadJSON[T any](content []byte) (*T, error) {
	if len(content) == 0 {
		return nil, errEmptyContent
	}

	var t *T
	err := json.Unmarshal(content, &t)

	if err != nil {
		return nil, err
	} else if t == nil {
		return nil, fmt.Errorf("decode %T: null content", t)
	}

	return t, nil
}
