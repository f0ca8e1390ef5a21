package command

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/transportease/internal/models"
	"github.com/ukydev/transportease/internal/session"
)

const testVehicles = `[
	{"id": 1, "name": "Innova Crysta", "type": "car", "city": "Mumbai", "capacity": 7, "pricePerKm": 14, "available": true},
	{"id": 2, "name": "Volvo Sleeper", "type": "bus", "city": "Chennai", "capacity": 40, "ratePerKm": 55, "available": true},
	{"id": 3, "name": "Mercedes E-Class", "type": "luxury", "city": "Mumbai", "capacity": 4, "pricePerKm": 45, "available": false}
]`

// fakeAPI answers the rental API endpoints the commands call.
func fakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req models.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Password != "secret123" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Invalid credentials"}`))
			return
		}
		_, _ = w.Write([]byte(`{"id": 7, "username": "asha", "email": "` + req.Email + `", "role": "USER", "token": "tok-user"}`))
	})
	mux.HandleFunc("/api/auth/login-owner", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"token": "tok-owner", "role": "OWNER"}`))
	})
	mux.HandleFunc("/api/vehicles", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			assert.Equal(t, "Bearer tok-owner", r.Header.Get("Authorization"))
			require.NoError(t, r.ParseMultipartForm(1<<20))
			assert.Equal(t, "ravi@example.com", r.FormValue("ownerEmail"))
			_, _ = w.Write([]byte(`{"id": 9, "name": "` + r.FormValue("name") + `", "ratePerKm": 18}`))
			return
		}
		_, _ = w.Write([]byte(testVehicles))
	})
	mux.HandleFunc("/api/bookings/user/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-user", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[{"id": 31, "vehicleId": 1, "pickupLocation": "Andheri", "dropLocation": "Pune", "distanceInKm": 150, "totalCost": 2100, "confirmed": true}]`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func runCmd(t *testing.T, apiURL, sessionFile string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--api-url", apiURL, "--session-file", sessionFile, "--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestLoginWhoamiLogout(t *testing.T) {
	srv := fakeAPI(t)
	sessionFile := filepath.Join(t.TempDir(), "user.json")

	out, err := runCmd(t, srv.URL, sessionFile, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Not logged in")

	out, err = runCmd(t, srv.URL, sessionFile, "login", "--email", "asha@example.com", "--password", "secret123")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as asha <asha@example.com> (user)")

	stored, err := session.NewFileStore(sessionFile).Load()
	require.NoError(t, err)
	assert.Equal(t, "7", stored.ID)
	assert.Equal(t, models.RoleUser, stored.Role)

	out, err = runCmd(t, srv.URL, sessionFile, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "asha@example.com")

	out, err = runCmd(t, srv.URL, sessionFile, "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out")

	_, err = session.NewFileStore(sessionFile).Load()
	assert.ErrorIs(t, err, session.ErrNoSession)
}

func TestLoginRejected(t *testing.T) {
	srv := fakeAPI(t)
	sessionFile := filepath.Join(t.TempDir(), "user.json")

	_, err := runCmd(t, srv.URL, sessionFile, "login", "--email", "asha@example.com", "--password", "wrongpass")
	require.Error(t, err)
	assert.Equal(t, "Invalid credentials", err.Error())

	_, err = runCmd(t, srv.URL, sessionFile, "login", "--email", "nope", "--password", "secret123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Please enter a valid email address")
}

func TestVehiclesFilters(t *testing.T) {
	srv := fakeAPI(t)
	sessionFile := filepath.Join(t.TempDir(), "user.json")

	out, err := runCmd(t, srv.URL, sessionFile, "vehicles")
	require.NoError(t, err)
	assert.Contains(t, out, "3 vehicle(s)")
	assert.Contains(t, out, "₹55")

	out, err = runCmd(t, srv.URL, sessionFile, "vehicles", "--city", "Mumbai", "--max-price", "20")
	require.NoError(t, err)
	assert.Contains(t, out, "Innova Crysta")
	assert.NotContains(t, out, "Mercedes")
	assert.Contains(t, out, "1 vehicle(s)")

	out, err = runCmd(t, srv.URL, sessionFile, "vehicles", "--search", "zzz")
	require.NoError(t, err)
	assert.Contains(t, out, "No vehicles match your filters")
}

func TestQuote(t *testing.T) {
	srv := fakeAPI(t)
	sessionFile := filepath.Join(t.TempDir(), "user.json")

	out, err := runCmd(t, srv.URL, sessionFile, "quote", "--distance", "100", "--vehicle", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Vehicle: Innova Crysta")
	assert.Contains(t, out, "Estimated cost: ₹1,400")

	out, err = runCmd(t, srv.URL, sessionFile, "quote", "--distance", "12.5", "--rate", "20")
	require.NoError(t, err)
	assert.Contains(t, out, "Estimated cost: ₹250")

	_, err = runCmd(t, srv.URL, sessionFile, "quote", "--distance", "0", "--rate", "20")
	require.Error(t, err)
	assert.Equal(t, "Distance must be greater than 0", err.Error())

	_, err = runCmd(t, srv.URL, sessionFile, "quote", "--distance", "10")
	require.Error(t, err)
	assert.Equal(t, "Please select a vehicle", err.Error())
}

func TestBookingsRequireLogin(t *testing.T) {
	srv := fakeAPI(t)
	sessionFile := filepath.Join(t.TempDir(), "user.json")

	_, err := runCmd(t, srv.URL, sessionFile, "bookings")
	assert.ErrorIs(t, err, errNotLoggedIn)

	_, err = runCmd(t, srv.URL, sessionFile, "login", "--email", "asha@example.com", "--password", "secret123")
	require.NoError(t, err)

	out, err := runCmd(t, srv.URL, sessionFile, "bookings")
	require.NoError(t, err)
	assert.Contains(t, out, "Andheri")
	assert.Contains(t, out, "₹2,100")
	assert.Contains(t, out, "confirmed")
}

func TestVehicleAddOwnerOnly(t *testing.T) {
	srv := fakeAPI(t)
	sessionFile := filepath.Join(t.TempDir(), "user.json")
	addArgs := []string{"vehicles", "add", "--type", "Car", "--name", "Swift Dzire", "--capacity", "4", "--rate", "18", "--city", "Pune"}

	_, err := runCmd(t, srv.URL, sessionFile, "login", "--email", "asha@example.com", "--password", "secret123")
	require.NoError(t, err)
	_, err = runCmd(t, srv.URL, sessionFile, addArgs...)
	assert.ErrorIs(t, err, errOwnerOnly)

	_, err = runCmd(t, srv.URL, sessionFile, "login", "--owner", "--email", "ravi@example.com", "--password", "secret123")
	require.NoError(t, err)
	out, err := runCmd(t, srv.URL, sessionFile, addArgs...)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Added vehicle Swift Dzire (9)"), out)
}

func TestVehicleTypeFlagHelp(t *testing.T) {
	cmd := NewRootCmd()
	vehicles, _, err := cmd.Find([]string{"vehicles"})
	require.NoError(t, err)
	assert.Equal(t, "one of bus, van, car, luxury, all", vehicles.Flags().Lookup("type").Usage)

	add, _, err := cmd.Find([]string{"vehicles", "add"})
	require.NoError(t, err)
	assert.Equal(t, "one of bus, van, car, luxury", add.Flags().Lookup("type").Usage)
}
