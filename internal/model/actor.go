package model

// ActorType tells which identity class a session token belongs to.
type ActorType string

const (
	ActorCustomer ActorType = "customer"
	ActorPartner  ActorType = "partner"
)
