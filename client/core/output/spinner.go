package output

import (
	"fmt"

	"github.com/pterm/pterm"
)

// Progress 长时间等待的进度提示
type Progress interface {
	Update(message string)
	Success(message string)
	Fail(message string)
}

// StartProgress 在提示输出上启动进度提示
// 结构化输出或静默模式下只打印必要信息，不启动动画
func (f *Formatter) StartProgress(message string) Progress {
	if f.silent || f.IsStructured() {
		return &plainProgress{f: f, quiet: true}
	}

	spinner, err := pterm.DefaultSpinner.WithWriter(f.logWriter).WithRemoveWhenDone(false).Start(message)
	if err != nil {
		f.PrintInfo(message)
		return &plainProgress{f: f}
	}
	return &spinnerProgress{spinner: spinner}
}

type spinnerProgress struct {
	spinner *pterm.SpinnerPrinter
}

func (p *spinnerProgress) Update(message string) {
	p.spinner.UpdateText(message)
}

func (p *spinnerProgress) Success(message string) {
	p.spinner.Success(message)
}

func (p *spinnerProgress) Fail(message string) {
	p.spinner.Fail(message)
}

// plainProgress 无动画的进度提示
type plainProgress struct {
	f     *Formatter
	quiet bool
}

func (p *plainProgress) Update(message string) {
	if !p.quiet {
		p.f.PrintInfo(message)
	}
}

func (p *plainProgress) Success(message string) {
	if !p.quiet {
		p.f.PrintSuccess(message)
	}
}

func (p *plainProgress) Fail(message string) {
	_, _ = fmt.Fprintf(p.f.logWriter, "❌ %s\n", message)
}
