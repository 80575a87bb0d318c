package lab

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"Thermolab/internal/domain"
)

func post(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))
	return rec
}

func TestCalculateHandler(t *testing.T) {
	h := &Handler{Svc: newService(t, nil)}
	rec := post(h.Calculate, `{"slug":"therm-conductivity-metal-rod","inputs":{"flow_rate_value":0.15,"t_wi":20,"t_wo":21,"t1":80,"t2":75,"t3":70,"t4":65,"t5":60}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, domain.SlugThermalConductivity, body["slug"])
	assert.Len(t, body["trace_table"], 18)
	assert.Contains(t, body, "steps")
	assert.Contains(t, body, "graphs")
}

func TestCalculateHandlerErrors(t *testing.T) {
	h := &Handler{Svc: newService(t, nil)}

	rec := post(h.Calculate, `{"slug":"pin-fin","inputs":{}}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"Unknown experiment","code":"NOT_FOUND"}`, rec.Body.String())

	rec = post(h.Calculate, `{"slug":"natural-convection-vertical-tube","inputs":{"observations":"[]"}}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "No observation trials provided.")

	rec = post(h.Calculate, `{"inputs":{}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = post(h.Calculate, `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSaveRunHandler(t *testing.T) {
	runs := &mockRuns{}
	runs.On("SaveRun", mock.Anything, mock.Anything).Return(9, nil)
	h := &Handler{Svc: newService(t, runs)}

	rec := post(h.SaveRun, `{"slug":"therm-conductivity-metal-rod","formData":{"student_name":"R","usn":"U1","t_wi":20,"t_wo":21}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"id":9}`, rec.Body.String())

	rec = post(h.SaveRun, `{"slug":"pin-fin","formData":{}}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSaveRunHandlerDisabled(t *testing.T) {
	h := &Handler{Svc: newService(t, nil)}
	rec := post(h.SaveRun, `{"slug":"therm-conductivity-metal-rod","formData":{"t_wi":20}}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestExperimentHandlers(t *testing.T) {
	h := &Handler{Svc: newService(t, nil)}

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/experiments", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var list []domain.Experiment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 2)

	req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/api/experiments/x", nil),
		map[string]string{"slug": domain.SlugNaturalConvection})
	rec = httptest.NewRecorder()
	h.Get(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var exp domain.Experiment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &exp))
	assert.Equal(t, "Heat Transfer Through Free (Natural) Convection (Vertical Tube)", exp.Title)
	assert.Equal(t, "Tube Length", exp.Content.Constants["L_tube"].Description)

	req = mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/api/experiments/x", nil),
		map[string]string{"slug": "nope"})
	rec = httptest.NewRecorder()
	h.Get(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
