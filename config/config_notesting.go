//go:build !testing

package config

const isTesting = false

func testingConfig() Config {
	panic("Testing config requires the testing build tag")
}
