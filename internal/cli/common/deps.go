package common

import (
	"github.com/crmarques/cloudstore/config"
	"github.com/crmarques/cloudstore/resource"
)

type CommandDependencies struct {
	Contexts config.ContextService
	Accounts *resource.AccountProxy
}

func RequireContexts(deps CommandDependencies) (config.ContextService, error) {
	if deps.Contexts == nil {
		return nil, ValidationError("context service is not configured", nil)
	}
	return deps.Contexts, nil
}

func RequireAccounts(deps CommandDependencies) (*resource.AccountProxy, error) {
	if deps.Accounts == nil {
		return nil, ValidationError("api client is not configured; run 'cloudstore config init' or set CLOUDSTORE_API_KEY", nil)
	}
	return deps.Accounts, nil
}

// RequireAccount returns an unsynced account handle; no request is sent.
func RequireAccount(deps CommandDependencies, accountID string) (*resource.Account, error) {
	accounts, err := RequireAccounts(deps)
	if err != nil {
		return nil, err
	}
	if accountID == "" {
		return nil, ValidationError("account id is required", nil)
	}
	return accounts.New(accountID)
}
