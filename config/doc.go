/*
Package config implements the StaticConfig/DynamicConfig split used by
cmd/scctld, in the shape of ptp/ptp4u/server's Config: options that
require a process restart live in StaticConfig and are populated from
command-line flags, while the remaining tunables live in DynamicConfig
and are (de)serialized from a YAML file via gopkg.in/yaml.v2.
*/
package config
