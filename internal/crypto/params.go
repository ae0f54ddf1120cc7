package crypto

import "golang.org/x/crypto/bcrypt"

const (
	// scrypt parameters for sealing the wallet encryption key
	// Security is prioritized over performance
	//
	// N=2^18 (~256MB RAM, 0.5-2s) keeps brute force expensive while still
	// fitting the memory limits of mobile devices.
	scryptN      = 1 << 18
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 32
	saltLen      = 32
	nonceLen     = 12

	// Upper bounds for scrypt parameters read back from a sealed key.
	maxScryptN = scryptN * 4
	maxScryptR = scryptR * 4
	maxScryptP = scryptP * 4

	// KeyLen is the size of the symmetric wallet encryption key.
	KeyLen = 32
)

// Params tunes the password work factors. The scrypt values are written into
// every sealed key, so changing them only affects newly sealed keys.
type Params struct {
	ScryptN    int
	ScryptR    int
	ScryptP    int
	BcryptCost int
}

// DefaultParams are used for wallets created in production.
var DefaultParams = Params{
	ScryptN:    scryptN,
	ScryptR:    scryptR,
	ScryptP:    scryptP,
	BcryptCost: bcrypt.DefaultCost,
}

// LightParams are cheap work factors for tests.
var LightParams = Params{
	ScryptN:    1 << 4,
	ScryptR:    8,
	ScryptP:    1,
	BcryptCost: bcrypt.MinCost,
}
