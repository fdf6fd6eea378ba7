package internal

import (
	"net/http"

	"github.com/google/uuid"
)

func GenerateId() string {
	return uuid.Must(uuid.NewRandom()).String()
}

// CorrelationIdFromRequest reads the correlation id header, one is
// generated when the caller didn't provide it
func CorrelationIdFromRequest(request *http.Request, header string) string {
	if correlationId := request.Header.Get(header); correlationId != "" {
		return correlationId
	}
	return GenerateId()
}
