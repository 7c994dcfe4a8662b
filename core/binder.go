package core

// BindArguments computes the keyword arguments for a call from the declared
// parameter schema, the host-trusted environment, and the caller-supplied
// arguments. For each declared parameter: the environment value wins if
// present; otherwise the caller value is taken unless the parameter is
// private; otherwise the parameter is omitted. Keys the schema does not
// declare never pass through, so caller payloads cannot smuggle unexpected
// arguments into a call.
func BindArguments(params []ParamSpec, callerArgs Args, env Environment) Args {
	bound := make(Args, len(params))
	for _, param := range params {
		if value, ok := env[param.Name]; ok {
			bound[param.Name] = value
			continue
		}
		if param.Private() {
			continue
		}
		if value, ok := callerArgs[param.Name]; ok {
			bound[param.Name] = value
		}
	}
	return bound
}

// BindCall binds arguments like BindArguments and additionally coerces
// caller-sourced values of typed parameters through the converter.
// Environment values are host-trusted and never coerced.
func BindCall(params []ParamSpec, callerArgs Args, env Environment, converter ArgumentConverter) (Args, error) {
	bound := make(Args, len(params))
	for _, param := range params {
		if value, ok := env[param.Name]; ok {
			bound[param.Name] = value
			continue
		}
		if param.Private() {
			continue
		}
		value, ok := callerArgs[param.Name]
		if !ok {
			continue
		}
		if param.Type != "" && converter != nil {
			converted, err := converter.Convert(value, param.Type)
			if err != nil {
				return nil, err
			}
			value = converted
		}
		bound[param.Name] = value
	}
	return bound, nil
}
