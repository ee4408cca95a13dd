package deploy

import (
	"bytes"
	"io"

	sigsyaml "sigs.k8s.io/yaml"
)

// Render writes the whole deployment as multi-document YAML, in apply
// order. The Ingress document is present only when the spec names a
// host.
func Render(w io.Writer, s Spec) error {
	docs := []any{
		s.NamespaceResource(),
		s.Deployment(),
		s.Service(),
		s.Autoscaler(),
	}
	if ing := s.Ingress(); ing != nil {
		docs = append(docs, ing)
	}

	buf := bytes.Buffer{}
	for i, doc := range docs {
		if 0 < i {
			buf.WriteString("---\n")
		}
		y, err := sigsyaml.Marshal(doc)
		if err != nil {
			return err
		}
		buf.Write(y)
	}
	_, err := w.Write(buf.Bytes())
	return err
}
