package config

import "fmt"

type RunningEnvironment string

const Development RunningEnvironment = "development"
const Production RunningEnvironment = "production"

func (r RunningEnvironment) MarshalText() (data []byte, err error) {
	return []byte(r), nil
}

func (r *RunningEnvironment) UnmarshalText(data []byte) error {
	val := RunningEnvironment(string(data))
	switch val {
	case Development, Production, "":
	default:
		return fmt.Errorf("unrecognized running environment %q", string(data))
	}
	*r = val
	return nil
}
