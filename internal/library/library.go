package library

import "agal/internal/module"

// RegisterAll installs the 8 DOMAIN STACK modules (§4.8's `:nombre`
// import path convention) onto loader, mirroring sentra's
// cmd root wiring every RegisterXBindings call into one VM instance.
func RegisterAll(loader *module.Loader) {
	loader.RegisterBuiltin(":consola", NewConsola)
	loader.RegisterBuiltin(":mate", NewMate)
	loader.RegisterBuiltin(":tmp", NewTmp)
	loader.RegisterBuiltin(":sa", NewSa)
	loader.RegisterBuiltin(":red", NewRed)
	loader.RegisterBuiltin(":bd", NewBd)
	loader.RegisterBuiltin(":constructores", NewConstructores)
	loader.RegisterBuiltin(":cripto", NewCripto)
}
