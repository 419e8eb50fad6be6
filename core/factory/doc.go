// Package factory provides a small generic registry used to instantiate
// pluggable modules, such as metrics sinks and record writers, from
// configuration. A module is a type name plus a map of raw settings that
// the factory decodes into a typed struct.
//
//	reg := factory.NewRegistry[recordlog.Writer]()
//	_ = reg.Register("jsonl", func(conf map[string]any) (recordlog.Writer, error) {
//	    var c struct{ Path string `json:"path"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return recordlog.NewJSONLStore(c.Path)
//	})
//	w, err := reg.Create(factory.ModuleConfig{Type: "jsonl", Conf: map[string]any{"path": "out.jsonl"}})
package factory
