package core

import (
	"context"

	"gopkg.in/yaml.v3"
)

// Configurable modules receive their raw `modules.<id>` YAML node right
// after construction.
type Configurable interface {
	Configure(node *yaml.Node) error
}

// Provisioner modules fill defaults, open resources and register services.
type Provisioner interface {
	Provision(ctx *AppContext) error
}

// Validator modules check their configuration after provisioning.
// Validate must not have side effects.
type Validator interface {
	Validate() error
}

// Starter modules begin background work once every module is provisioned.
// Services registered by other modules are safe to resolve here.
type Starter interface {
	Start() error
}

// Stopper modules release resources. Stop runs in reverse start order.
type Stopper interface {
	Stop(ctx context.Context) error
}
