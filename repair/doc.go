// Package repair implements the wheel repair tool: it retags wheels for a
// build platform, regenerates their RECORD manifest, and repacks them.
//
// The tool never walks directories or writes archives itself. Both steps go
// through the [Primitives] it is constructed with, so callers decide how
// trees are enumerated and how archives are produced:
//
//	tool := repair.New(repair.WithPrimitives(repair.Primitives{
//	    Walk: myWalk,
//	    Pack: myPack,
//	}))
//	os.Exit(tool.Main(ctx, os.Args[1:]))
//
// Without that option the tool uses [DefaultPrimitives], which make no
// reproducibility guarantees.
package repair
