// Package core contains the connect-flow domain contracts, entities, and
// orchestration logic. Transport layers and provider adapters depend on this
// package; core must not depend on provider-specific code.
package core
