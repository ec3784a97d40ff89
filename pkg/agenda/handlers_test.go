package agenda

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agenda/pkg/client"
	"agenda/pkg/models"
	"agenda/pkg/store/memory"
)

func strPtr(s string) *string { return &s }

func newTestApp(t *testing.T) *App {
	t.Helper()
	hash, err := HashPassword("secret")
	require.NoError(t, err)

	config := &Config{
		AdminEmail:        "admin@santotomas.edu",
		AdminPasswordHash: hash,
		JWTSecret:         "test-secret",
	}
	app := NewWithStore(config, memory.New(), zerolog.Nop())
	t.Cleanup(func() { _ = app.Close() })
	return app
}

func doRequest(t *testing.T, app *App, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	app.Router().ServeHTTP(recorder, req)
	return recorder
}

func signInTestAdmin(t *testing.T, app *App) string {
	t.Helper()
	resp := doRequest(t, app, "POST", "/api/auth/signin", "", client.SignInRequest{
		Email:    "admin@santotomas.edu",
		Password: "secret",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	var auth client.AuthResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &auth))
	require.NotEmpty(t, auth.Token)
	return auth.Token
}

func TestSignIn(t *testing.T) {
	app := newTestApp(t)

	token := signInTestAdmin(t, app)

	resp := doRequest(t, app, "GET", "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var me map[string]string
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &me))
	assert.Equal(t, "admin@santotomas.edu", me["email"])
}

func TestSignInRejectsBadCredentials(t *testing.T) {
	app := newTestApp(t)

	resp := doRequest(t, app, "POST", "/api/auth/signin", "", client.SignInRequest{
		Email:    "admin@santotomas.edu",
		Password: "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = doRequest(t, app, "POST", "/api/auth/signin", "", client.SignInRequest{
		Email:    "someone@santotomas.edu",
		Password: "secret",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestSignOutRevokesToken(t *testing.T) {
	app := newTestApp(t)
	token := signInTestAdmin(t, app)

	resp := doRequest(t, app, "POST", "/api/auth/signout", token, nil)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = doRequest(t, app, "GET", "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestMutationsRequireAdminToken(t *testing.T) {
	app := newTestApp(t)

	resp := doRequest(t, app, "POST", "/api/departments", "", models.DepartmentForm{Name: "Rectoría"})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = doRequest(t, app, "POST", "/api/departments", "not-a-token", models.DepartmentForm{Name: "Rectoría"})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	// reads stay public
	resp = doRequest(t, app, "GET", "/api/departments", "", nil)
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestDepartmentLifecycle(t *testing.T) {
	app := newTestApp(t)
	token := signInTestAdmin(t, app)

	resp := doRequest(t, app, "POST", "/api/departments", token, models.DepartmentForm{Name: "Rectoría"})
	require.Equal(t, http.StatusCreated, resp.Code)
	var dept models.Department
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &dept))
	assert.False(t, dept.ID.IsZero())
	assert.NotZero(t, dept.CreatedAt)

	resp = doRequest(t, app, "PUT", "/api/departments/"+dept.ID.String(), token,
		models.DepartmentPatch{Name: strPtr("Rectoría Nacional")})
	require.Equal(t, http.StatusOK, resp.Code)
	var updated models.Department
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &updated))
	assert.Equal(t, "Rectoría Nacional", updated.Name)
	assert.Equal(t, dept.CreatedAt, updated.CreatedAt)

	resp = doRequest(t, app, "DELETE", "/api/departments/"+dept.ID.String(), token, nil)
	require.Equal(t, http.StatusNoContent, resp.Code)

	resp = doRequest(t, app, "PUT", "/api/departments/"+dept.ID.String(), token,
		models.DepartmentPatch{Name: strPtr("Gone")})
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestDeleteDepartmentGuard(t *testing.T) {
	app := newTestApp(t)
	token := signInTestAdmin(t, app)

	resp := doRequest(t, app, "POST", "/api/departments", token, models.DepartmentForm{Name: "Finanzas"})
	require.Equal(t, http.StatusCreated, resp.Code)
	var dept models.Department
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &dept))

	resp = doRequest(t, app, "POST", "/api/contacts", token, models.ContactForm{
		FullName: "Ana Soto", Email: "asoto@x.cl", Extension: "2200",
		Location: "Edif B", DepartmentID: dept.ID,
	})
	require.Equal(t, http.StatusCreated, resp.Code)
	var contact models.Contact
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &contact))

	// delete is blocked while a contact references the department
	resp = doRequest(t, app, "DELETE", "/api/departments/"+dept.ID.String(), token, nil)
	require.Equal(t, http.StatusConflict, resp.Code)

	resp = doRequest(t, app, "GET", "/api/departments", "", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var departments []models.Department
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &departments))
	assert.Len(t, departments, 1)

	// removing the contact unblocks the delete
	resp = doRequest(t, app, "DELETE", "/api/contacts/"+contact.ID.String(), token, nil)
	require.Equal(t, http.StatusNoContent, resp.Code)

	resp = doRequest(t, app, "DELETE", "/api/departments/"+dept.ID.String(), token, nil)
	assert.Equal(t, http.StatusNoContent, resp.Code)
}

func TestCreateContactValidation(t *testing.T) {
	app := newTestApp(t)
	token := signInTestAdmin(t, app)

	resp := doRequest(t, app, "POST", "/api/contacts", token, models.ContactForm{
		FullName: "Ana Soto",
	})
	require.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	var payload struct {
		Error  string   `json:"error"`
		Fields []string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &payload))
	assert.NotEmpty(t, payload.Error)
	assert.Equal(t, []string{"email", "extension", "location", "departmentId"}, payload.Fields)
}

func TestUpdateContactPartial(t *testing.T) {
	app := newTestApp(t)
	token := signInTestAdmin(t, app)

	resp := doRequest(t, app, "POST", "/api/departments", token, models.DepartmentForm{Name: "Docencia"})
	require.Equal(t, http.StatusCreated, resp.Code)
	var dept models.Department
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &dept))

	resp = doRequest(t, app, "POST", "/api/contacts", token, models.ContactForm{
		FullName: "Juan Pérez", Email: "jperez@x.cl", Extension: "1234",
		Location: "Edif A", DepartmentID: dept.ID,
	})
	require.Equal(t, http.StatusCreated, resp.Code)
	var contact models.Contact
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &contact))

	resp = doRequest(t, app, "PUT", "/api/contacts/"+contact.ID.String(), token,
		models.ContactPatch{Phone: strPtr("229876543")})
	require.Equal(t, http.StatusOK, resp.Code)
	var updated models.Contact
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &updated))
	assert.Equal(t, "229876543", updated.Phone)
	assert.Equal(t, "Juan Pérez", updated.FullName)
	assert.GreaterOrEqual(t, updated.UpdatedAt, contact.UpdatedAt)

	// blanking a required field is rejected
	resp = doRequest(t, app, "PUT", "/api/contacts/"+contact.ID.String(), token,
		models.ContactPatch{Email: strPtr("")})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}

func TestListContactsFiltering(t *testing.T) {
	app := newTestApp(t)
	token := signInTestAdmin(t, app)

	resp := doRequest(t, app, "POST", "/api/departments", token, models.DepartmentForm{Name: "Docencia"})
	require.Equal(t, http.StatusCreated, resp.Code)
	var d1 models.Department
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &d1))

	resp = doRequest(t, app, "POST", "/api/departments", token, models.DepartmentForm{Name: "Finanzas"})
	require.Equal(t, http.StatusCreated, resp.Code)
	var d2 models.Department
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &d2))

	for _, form := range []models.ContactForm{
		{FullName: "Juan Pérez", Email: "jperez@x.cl", Extension: "1234", Location: "Edif A", DepartmentID: d1.ID},
		{FullName: "Ana Soto", Email: "asoto@x.cl", Extension: "2200", Location: "Edif B", DepartmentID: d2.ID},
	} {
		resp = doRequest(t, app, "POST", "/api/contacts", token, form)
		require.Equal(t, http.StatusCreated, resp.Code)
	}

	list := func(path string) []models.Contact {
		resp := doRequest(t, app, "GET", path, "", nil)
		require.Equal(t, http.StatusOK, resp.Code)
		var contacts []models.Contact
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &contacts))
		return contacts
	}

	all := list("/api/contacts")
	require.Len(t, all, 2)
	// ordered by full name
	assert.Equal(t, "Ana Soto", all[0].FullName)

	byDept := list("/api/contacts?departmentId=" + d1.ID.String())
	require.Len(t, byDept, 1)
	assert.Equal(t, "Juan Pérez", byDept[0].FullName)

	filtered := list(fmt.Sprintf("/api/contacts?departmentId=%s&q=perez", d1.ID))
	require.Len(t, filtered, 1)
	assert.Equal(t, "Juan Pérez", filtered[0].FullName)

	lookup := list("/api/contacts?mode=lookup&q=an")
	require.Len(t, lookup, 1)
	assert.Equal(t, "Ana Soto", lookup[0].FullName)

	resp = doRequest(t, app, "GET", "/api/contacts?departmentId=nope", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestDirectoryEndpoints(t *testing.T) {
	app := newTestApp(t)
	token := signInTestAdmin(t, app)

	resp := doRequest(t, app, "POST", "/api/departments", token, models.DepartmentForm{Name: "Biblioteca"})
	require.Equal(t, http.StatusCreated, resp.Code)

	// the directory only reflects the store after a refresh or Start
	resp = doRequest(t, app, "POST", "/api/directory/refresh", "", nil)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = doRequest(t, app, "GET", "/api/directory", "", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var snap DirectorySnapshot
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &snap))
	assert.False(t, snap.Loading)
	assert.Empty(t, snap.Error)
	require.Len(t, snap.Departments, 1)
	assert.Equal(t, "Biblioteca", snap.Departments[0].Name)
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)

	resp := doRequest(t, app, "GET", "/api/health", "", nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var health map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health["status"])
	assert.NotZero(t, health["time"])
}
