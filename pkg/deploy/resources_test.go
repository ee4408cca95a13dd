package deploy_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dpetrashka/kanaweb/pkg/deploy"
	"github.com/dpetrashka/kanaweb/pkg/utils/cmp"
)

func fullSpec() deploy.Spec {
	return deploy.Spec{
		Namespace:        "kana",
		AppImage:         "registry.example.com/kana/kanad:v1.0.0",
		ModelImage:       "registry.example.com/kana/manga-ocr-server:v1.0.0",
		Host:             "kana.example.com",
		TLSSecret:        "kana-tls",
		AllowFrom:        []string{"203.0.113.0/24", "198.51.100.0/24"},
		MinReplicas:      1,
		MaxReplicas:      5,
		TargetCPUPercent: 50,
		ModelCacheSize:   "5Gi",
	}
}

func TestDeployment(t *testing.T) {

	t.Run("it carries the recommended labels", func(t *testing.T) {
		depl := fullSpec().Deployment()
		expected := map[string]string{
			"app.kubernetes.io/name":       "kanad",
			"app.kubernetes.io/instance":   "kanad",
			"app.kubernetes.io/component":  "app",
			"app.kubernetes.io/part-of":    "kanaweb",
			"app.kubernetes.io/managed-by": "kanadeploy",
		}
		if !cmp.MapEq(depl.ObjectMeta.Labels, expected) {
			t.Errorf("labels are %v, expected %v", depl.ObjectMeta.Labels, expected)
		}
		if !cmp.MapLeq(depl.Spec.Selector.MatchLabels, depl.Spec.Template.ObjectMeta.Labels) {
			t.Error("selector does not match the pod template labels")
		}
	})

	t.Run("the app container serves on 8501 and probes its own health api", func(t *testing.T) {
		depl := fullSpec().Deployment()
		containers := depl.Spec.Template.Spec.Containers
		if len(containers) != 2 {
			t.Fatalf("pod has %d containers, expected app + model sidecar", len(containers))
		}

		app := containers[0]
		if app.Ports[0].ContainerPort != 8501 {
			t.Errorf("app port is %d, expected 8501", app.Ports[0].ContainerPort)
		}
		if app.ReadinessProbe.HTTPGet.Path != "/api/health" {
			t.Errorf("readiness path is %s", app.ReadinessProbe.HTTPGet.Path)
		}
	})

	t.Run("the model sidecar listens on 8502 and caches weights on the sized volume", func(t *testing.T) {
		depl := fullSpec().Deployment()
		model := depl.Spec.Template.Spec.Containers[1]
		if model.Ports[0].ContainerPort != 8502 {
			t.Errorf("model port is %d, expected 8502", model.Ports[0].ContainerPort)
		}
		if model.VolumeMounts[0].Name != "model-cache" {
			t.Errorf("model mounts %s, expected model-cache", model.VolumeMounts[0].Name)
		}

		vol := depl.Spec.Template.Spec.Volumes[0]
		if vol.EmptyDir.SizeLimit.String() != "5Gi" {
			t.Errorf("cache size is %s, expected 5Gi", vol.EmptyDir.SizeLimit.String())
		}
	})

	t.Run("the pod requests 2 cpu and 4Gi in total", func(t *testing.T) {
		depl := fullSpec().Deployment()
		containers := depl.Spec.Template.Spec.Containers

		cpu := containers[0].Resources.Requests.Cpu().MilliValue() +
			containers[1].Resources.Requests.Cpu().MilliValue()
		if cpu != 2000 {
			t.Errorf("cpu request is %dm, expected 2000m", cpu)
		}

		mem := containers[0].Resources.Requests.Memory().Value() +
			containers[1].Resources.Requests.Memory().Value()
		if mem != 4*1024*1024*1024 {
			t.Errorf("memory request is %d, expected 4Gi", mem)
		}
	})
}

func TestService(t *testing.T) {
	t.Run("it fronts the app port with the shared selector", func(t *testing.T) {
		s := fullSpec()
		svc := s.Service()
		if svc.Spec.Ports[0].TargetPort.IntValue() != 8501 {
			t.Errorf("target port is %v, expected 8501", svc.Spec.Ports[0].TargetPort)
		}
		if !cmp.MapLeq(svc.Spec.Selector, s.Deployment().Spec.Template.ObjectMeta.Labels) {
			t.Error("service selector does not match deployment pods")
		}
	})
}

func TestIngress(t *testing.T) {

	t.Run("it routes the host to the service with tls and source restriction", func(t *testing.T) {
		ing := fullSpec().Ingress()
		if ing == nil {
			t.Fatal("no ingress for a spec with host")
		}
		if ing.Spec.Rules[0].Host != "kana.example.com" {
			t.Errorf("host is %s", ing.Spec.Rules[0].Host)
		}
		if ing.Spec.TLS[0].SecretName != "kana-tls" {
			t.Errorf("tls secret is %s", ing.Spec.TLS[0].SecretName)
		}
		allow := ing.ObjectMeta.Annotations["nginx.ingress.kubernetes.io/whitelist-source-range"]
		if allow != "203.0.113.0/24,198.51.100.0/24" {
			t.Errorf("source range is %s", allow)
		}
	})

	t.Run("no host, no ingress", func(t *testing.T) {
		s := fullSpec()
		s.Host = ""
		s.TLSSecret = ""
		if ing := s.Ingress(); ing != nil {
			t.Errorf("unexpected ingress: %+v", ing)
		}
	})

	t.Run("no tls secret, no tls section", func(t *testing.T) {
		s := fullSpec()
		s.TLSSecret = ""
		ing := s.Ingress()
		if len(ing.Spec.TLS) != 0 {
			t.Errorf("unexpected tls: %+v", ing.Spec.TLS)
		}
	})
}

func TestAutoscaler(t *testing.T) {
	t.Run("it scales the deployment between the replica bounds on cpu", func(t *testing.T) {
		hpa := fullSpec().Autoscaler()
		if hpa.Spec.ScaleTargetRef.Name != "kanad" || hpa.Spec.ScaleTargetRef.Kind != "Deployment" {
			t.Errorf("unexpected target: %+v", hpa.Spec.ScaleTargetRef)
		}
		if *hpa.Spec.MinReplicas != 1 || hpa.Spec.MaxReplicas != 5 {
			t.Errorf("bounds are %d..%d, expected 1..5", *hpa.Spec.MinReplicas, hpa.Spec.MaxReplicas)
		}
		target := hpa.Spec.Metrics[0].Resource.Target
		if *target.AverageUtilization != 50 {
			t.Errorf("cpu target is %d, expected 50", *target.AverageUtilization)
		}
	})
}

func TestRender(t *testing.T) {

	t.Run("it writes one yaml document per resource", func(t *testing.T) {
		buf := bytes.Buffer{}
		if err := deploy.Render(&buf, fullSpec()); err != nil {
			t.Fatal(err)
		}
		docs := strings.Split(buf.String(), "---\n")
		if len(docs) != 5 {
			t.Fatalf("rendered %d documents, expected 5", len(docs))
		}
		for _, kind := range []string{
			"kind: Namespace", "kind: Deployment", "kind: Service",
			"kind: HorizontalPodAutoscaler", "kind: Ingress",
		} {
			if !strings.Contains(buf.String(), kind) {
				t.Errorf("%q is not rendered", kind)
			}
		}
	})

	t.Run("a hostless spec renders without ingress", func(t *testing.T) {
		s := fullSpec()
		s.Host = ""
		s.TLSSecret = ""

		buf := bytes.Buffer{}
		if err := deploy.Render(&buf, s); err != nil {
			t.Fatal(err)
		}
		if strings.Contains(buf.String(), "kind: Ingress") {
			t.Error("ingress is rendered, unexpectedly")
		}
	})
}
