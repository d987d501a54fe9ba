package core

import (
	"github.com/crmarques/cloudstore/config"
	"github.com/crmarques/cloudstore/resource"
	"github.com/crmarques/cloudstore/server"
)

// Client is the bootstrapped entry point: a resolved configuration, the
// requester every resource sends through, and the root account accessor.
type Client struct {
	Contexts  config.ContextService
	Config    config.Config
	Requester server.Requester
	Accounts  *resource.AccountProxy
}

type BootstrapConfig struct {
	ContextCatalogPath string
}
