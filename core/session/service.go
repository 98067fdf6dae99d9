package session

import (
	"context"
	"crypto/subtle"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/staffdesk/core"
	"github.com/trezcool/staffdesk/core/employee"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type (
	// Fetcher retrieves the raw employee payload (see services/fetcher).
	Fetcher interface {
		Fetch(ctx context.Context) (interface{}, error)
	}

	// FetchError wraps a failure of the remote data source.
	FetchError struct {
		Err error
	}

	Credentials struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	LoginResult struct {
		Count int           `json:"count"`
		Shape employee.Shape `json:"shape"`
	}

	// Diagnostics describes the last payload seen by the session.
	Diagnostics struct {
		Shape         employee.Shape     `json:"shape"`
		FetchedAt     time.Time          `json:"fetchedAt"`
		Authenticated bool               `json:"authenticated"`
		Records       int                `json:"records"`
		Photos        int                `json:"photos"`
		Version       uint64             `json:"version"`
		Sample        *employee.Employee `json:"sample,omitempty"`
	}

	Service struct {
		store        *Store
		fetcher      Fetcher
		log          core.Logger
		username     string
		passwordHash []byte

		mu        sync.Mutex
		lastShape employee.Shape
		fetchedAt time.Time
	}
)

func (e *FetchError) Error() string {
	return "fetching employee data: " + e.Err.Error()
}

func (e *FetchError) Cause() error { return e.Err }

// IsFetchError reports whether err comes from the remote data source.
func IsFetchError(err error) bool {
	for err != nil {
		if _, ok := err.(*FetchError); ok {
			return true
		}
		cause, ok := err.(interface{ Cause() error })
		if !ok {
			return false
		}
		err = cause.Cause()
	}
	return false
}

func (c *Credentials) Validate(validate *validator.Validate) error {
	c.Username = core.CleanString(c.Username)
	return validate.Struct(c)
}

// NewService returns the login service of the single dashboard account.
// conf.PasswordHash (bcrypt) takes precedence over the plain conf.Password.
func NewService(store *Store, fetcher Fetcher, conf core.DashboardConfig, log core.Logger) (*Service, error) {
	hash := []byte(conf.PasswordHash)
	if len(hash) == 0 {
		var err error
		if hash, err = bcrypt.GenerateFromPassword([]byte(conf.Password), bcrypt.DefaultCost); err != nil {
			return nil, errors.Wrap(err, "hashing dashboard password")
		}
	} else if _, err := bcrypt.Cost(hash); err != nil {
		return nil, errors.Wrap(err, "invalid dashboard password hash")
	}
	return &Service{
		store:        store,
		fetcher:      fetcher,
		log:          log,
		username:     conf.Username,
		passwordHash: hash,
	}, nil
}

func (svc *Service) Store() *Store { return svc.store }

// CheckCredentials compares username/password with the dashboard account.
func (svc *Service) CheckCredentials(username, password string) error {
	userOk := subtle.ConstantTimeCompare([]byte(core.CleanString(username)), []byte(svc.username)) == 1
	pwdErr := bcrypt.CompareHashAndPassword(svc.passwordHash, []byte(password))
	if !userOk || pwdErr != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// Login checks the credentials, fetches the employee payload and starts a session with it.
// On any failure the stored session is left untouched.
func (svc *Service) Login(ctx context.Context, username, password string) (LoginResult, error) {
	if err := svc.CheckCredentials(username, password); err != nil {
		return LoginResult{}, err
	}

	attempt := svc.store.BeginLogin()
	raw, err := svc.fetcher.Fetch(ctx)
	if err != nil {
		return LoginResult{}, errors.WithStack(&FetchError{Err: err})
	}
	return svc.complete(attempt, raw)
}

// Import starts a session from an already retrieved payload (eg. a spreadsheet).
func (svc *Service) Import(raw interface{}) (LoginResult, error) {
	return svc.complete(svc.store.BeginLogin(), raw)
}

func (svc *Service) complete(attempt Attempt, raw interface{}) (LoginResult, error) {
	shape := employee.Classify(raw)
	records := employee.Normalize(raw)
	if shape == employee.ShapeUnknown || shape == employee.ShapeEmpty || len(records) == 0 {
		svc.log.Warn("employee payload holds no records", map[string]interface{}{"shape": shape.String()})
	}

	svc.mu.Lock()
	svc.lastShape = shape
	svc.fetchedAt = time.Now().UTC()
	svc.mu.Unlock()

	if err := svc.store.CompleteLogin(attempt, records); err != nil {
		if err == ErrStaleLogin {
			return LoginResult{}, err
		}
		return LoginResult{}, errors.Wrap(err, "saving session")
	}
	svc.log.Info("session started", map[string]interface{}{"records": len(records), "shape": shape.String()})
	return LoginResult{Count: len(records), Shape: shape}, nil
}

func (svc *Service) Logout() error {
	if err := svc.store.Logout(); err != nil {
		return errors.Wrap(err, "clearing session")
	}
	return nil
}

func (svc *Service) Diagnostics() Diagnostics {
	svc.mu.Lock()
	diag := Diagnostics{Shape: svc.lastShape, FetchedAt: svc.fetchedAt}
	svc.mu.Unlock()

	records := svc.store.Records()
	diag.Authenticated = svc.store.Authenticated()
	diag.Records = len(records)
	diag.Photos = len(svc.store.Photos())
	diag.Version = svc.store.Version()
	if len(records) > 0 {
		diag.Sample = &records[0]
	}
	return diag
}
