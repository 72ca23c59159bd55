package codegen

type Options struct {
	Output       string
	Backend      string
	Target       string
	Device       string
	VerifyDevice bool
	Verbose      bool
	Environment  Env
}
