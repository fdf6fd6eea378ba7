package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/antonio-alexander/go-employee-query/internal/data"
)

var errInvalidEmpNo = errors.New("invalid employee number")

func empNoFromPath(pathVariables map[string]string) (int64, error) {
	empNo, err := strconv.ParseInt(pathVariables[data.PathEmpNo], 10, 64)
	if err != nil {
		return 0, errInvalidEmpNo
	}
	return empNo, nil
}

// errorStatus maps an error to its status code, only the error's own
// message is surfaced (data.Error hides its cause)
func errorStatus(err error) int {
	switch {
	default:
		return http.StatusInternalServerError
	case errors.Is(err, data.ErrEmployeeNotFound):
		return http.StatusNotFound
	case errors.Is(err, errInvalidEmpNo):
		return http.StatusBadRequest
	}
}

func handleResponse(writer http.ResponseWriter, err error, items ...any) {
	var bytes []byte

	if err == nil {
		if len(items) == 0 {
			writer.WriteHeader(http.StatusNoContent)
			return
		}
		bytes, err = json.Marshal(items[0])
	}
	if err != nil {
		var e data.ErrorResponse

		writer.Header().Set("Content-Type", "application/json; charset=utf-8")
		writer.WriteHeader(errorStatus(err))
		e.Error = err.Error()
		bytes, err = json.Marshal(&e)
		if err != nil {
			fmt.Printf("error handling response: %s\n", err)
			return
		}
		if _, err := writer.Write(bytes); err != nil {
			fmt.Printf("error handling response: %s\n", err)
		}
		return
	}
	writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	if _, err := writer.Write(bytes); err != nil {
		fmt.Printf("error handling response: %s\n", err)
	}
}
