package persistence

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/felixbrock/lpviz/internal/domain"
)

var csvHeader = []string{"id", "created_at", "objective_type", "status", "objective_value", "failure"}

func WriteCSV(w io.Writer, submissions []domain.Submission) (err error) {
	writer := csv.NewWriter(w)

	defer func() {
		writer.Flush()
		if flushErr := writer.Error(); flushErr != nil {
			slog.Error(fmt.Sprintf("Error occured: %s", flushErr.Error()))
			if err == nil {
				err = flushErr
			}
		}
	}()

	if err = writer.Write(csvHeader); err != nil {
		return err
	}

	for _, submission := range submissions {
		if err = writer.Write(toRecord(submission)); err != nil {
			return err
		}
	}

	return nil
}

func toRecord(submission domain.Submission) []string {
	objective := ""
	if submission.ObjectiveValue != nil {
		objective = strconv.FormatFloat(*submission.ObjectiveValue, 'f', -1, 64)
	}

	return []string{
		submission.Id,
		submission.CreatedAt.UTC().Format(time.RFC3339),
		string(submission.ObjectiveType),
		submission.Status,
		objective,
		submission.Failure,
	}
}
