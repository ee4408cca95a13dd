// kanadeploy renders or applies the k8s resources running the kana
// practice service.
//
//	kanadeploy render -spec deploy.yaml [-out manifests.yaml]
//	kanadeploy apply  -spec deploy.yaml [-kubeconfig PATH]
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/dpetrashka/kanaweb/pkg/deploy"
	"github.com/dpetrashka/kanaweb/pkg/utils/kubeutil"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s {render|apply} [flags]\n", os.Args[0])
	flag.PrintDefaults()
	os.Exit(2)
}

func main() {
	specPath := flag.String("spec", "", "deployment spec path")
	out := flag.String("out", "", "render output path. empty = stdout")
	kubeconfig := flag.String("kubeconfig", "", "kubeconfig path. empty = auto detect")

	if len(os.Args) < 2 {
		usage()
	}
	subcommand := os.Args[1]
	flag.CommandLine.Parse(os.Args[2:])

	if *specPath == "" {
		log.Fatalln("-spec is required")
	}
	spec, err := deploy.Load(*specPath)
	if err != nil {
		log.Fatalf("can not read deployment spec: %s", err)
	}

	switch subcommand {
	case "render":
		w := os.Stdout
		if *out != "" {
			f, err := os.Create(*out)
			if err != nil {
				log.Fatalf("can not open %s: %s", *out, err)
			}
			defer f.Close()
			w = f
		}
		if err := deploy.Render(w, spec); err != nil {
			log.Fatalf("can not render: %s", err)
		}
	case "apply":
		clientset, err := kubeutil.ConnectToK8s(*kubeconfig)
		if err != nil {
			log.Fatalf("can not connect to cluster: %s", err)
		}
		client := deploy.WrapClientset(clientset)
		if err := deploy.Apply(context.Background(), client, spec); err != nil {
			log.Fatalf("can not apply: %s", err)
		}
		log.Printf("deployed to namespace %s", spec.Namespace)
	default:
		usage()
	}
}
