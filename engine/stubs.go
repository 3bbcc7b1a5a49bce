package engine

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/surfdeck/surfdeck/errors"
)

// bindImportStubs satisfies function imports the module expects from its
// JS glue. wasm-bindgen emits namespaces such as __wbindgen_placeholder__
// whose functions only matter in a browser; hosting the module natively,
// a no-op that zeroes its results is sufficient to link.
func (e *Engine) bindImportStubs(ctx context.Context, compiled wazero.CompiledModule) error {
	byModule := map[string][]api.FunctionDefinition{}
	for _, def := range compiled.ImportedFunctions() {
		modName, _, isImport := def.Import()
		if !isImport {
			continue
		}
		byModule[modName] = append(byModule[modName], def)
	}

	for modName, defs := range byModule {
		if e.runtime.Module(modName) != nil {
			continue // already bound for an earlier module
		}

		builder := e.runtime.NewHostModuleBuilder(modName)
		for _, def := range defs {
			_, name, _ := def.Import()
			builder.NewFunctionBuilder().
				WithGoModuleFunction(noopFunc(len(def.ResultTypes())), def.ParamTypes(), def.ResultTypes()).
				Export(name)
		}
		if _, err := builder.Instantiate(ctx); err != nil {
			return errors.Wrap(errors.PhaseInstantiate, errors.KindInstantiation, err, "bind import stubs for "+modName)
		}
		Logger().Debug("import stubs bound",
			zap.String("module", modName),
			zap.Int("functions", len(defs)))
	}

	return nil
}

// noopFunc returns a host function that ignores its parameters and
// writes zero for each declared result.
func noopFunc(results int) api.GoModuleFunc {
	return func(_ context.Context, _ api.Module, stack []uint64) {
		for i := 0; i < results; i++ {
			stack[i] = 0
		}
	}
}
