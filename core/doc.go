// Package core contains the authorization contracts, the strategy registry,
// and the session manager. Adapters and stores depend on this package; core
// must not depend on transport or storage specifics.
package core
