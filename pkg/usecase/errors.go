package usecase

import "github.com/m-mizutani/goerr/v2"

var (
	ErrUnknownTenant    = goerr.New("unknown tenant")
	ErrTenantDisabled   = goerr.New("tenant is disabled")
	ErrNoMarkedMessages = goerr.New("no marked messages in scope")
	ErrSessionNotOpen   = goerr.New("session is not accepting decisions")
	ErrAnalysisFailed   = goerr.New("analysis failed")
)
