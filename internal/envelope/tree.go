package envelope

import "slurmrestd/internal/tree"

// ToTree renders the envelope plus an arbitrary payload keyed under
// payloadKey into a single Dict node, ready for the JSON/YAML emitter.
// payload may be nil, in which case the payload key is omitted.
func (e *Envelope) ToTree(payloadKey string, payload *tree.Value) *tree.Value {
	root := tree.NewDict()

	meta := tree.Dict(
		tree.V("plugin", tree.Dict(
			tree.S("type", e.Meta.Plugin.Type),
			tree.S("name", e.Meta.Plugin.Name),
		)),
		tree.V("slurm", tree.Dict(
			tree.S("release", e.Meta.Slurm.Release),
			tree.V("version", tree.Dict(
				tree.I("major", int64(e.Meta.Slurm.Version.Major)),
				tree.I("minor", int64(e.Meta.Slurm.Version.Minor)),
				tree.I("micro", int64(e.Meta.Slurm.Version.Micro)),
			)),
		)),
		tree.V("client", tree.Dict(
			tree.S("source", e.Meta.Client.Source),
			tree.I("uid", int64(e.Meta.Client.UID)),
			tree.I("gid", int64(e.Meta.Client.GID)),
		)),
	)
	setDict(root, "meta", meta)

	errs := make([]*tree.Value, 0, len(e.Errors))
	for _, en := range e.Errors {
		errs = append(errs, tree.Dict(
			tree.S("description", en.Description),
			tree.I("error_number", int64(en.ErrorNumber)),
			tree.S("error", en.Error),
			tree.S("source", en.Source),
		))
	}
	setDict(root, "errors", tree.List(errs...))

	warns := make([]*tree.Value, 0, len(e.Warnings))
	for _, w := range e.Warnings {
		warns = append(warns, tree.Dict(
			tree.S("description", w.Description),
			tree.S("source", w.Source),
		))
	}
	setDict(root, "warnings", tree.List(warns...))

	if payload != nil && payloadKey != "" {
		setDict(root, payloadKey, payload)
	}
	return root
}

func setDict(d *tree.Value, key string, v *tree.Value) {
	slot, err := d.DictKeySet(key)
	if err != nil {
		panic(err) // root is always a freshly-built Dict; this cannot fail
	}
	*slot = *v
}
