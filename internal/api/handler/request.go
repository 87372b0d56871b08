package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"mathquest/internal/common"
)

// decodeJSON reads the request body into v. An empty body leaves v untouched
// when allowEmpty is set. Decode failures are answered with 400 and reported
// as false.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any, allowEmpty bool) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || (allowEmpty && errors.Is(err, io.EOF)) {
		return true
	}
	common.RespondWithError(w, http.StatusBadRequest, common.CodeValidation, "Invalid request: "+err.Error())
	return false
}
