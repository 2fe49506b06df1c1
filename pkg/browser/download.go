package browser

import (
	"context"
	"fmt"

	"emojiscraper/pkg/models"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// downloadScript saves text as a file through a temporary object URL and
// anchor element, both removed afterwards.
const downloadScript = `(name, type, text) => {
	const url = URL.createObjectURL(new Blob([text], { type }));
	const a = document.createElement("a");
	a.href = url;
	a.download = name;
	a.style.display = "none";
	document.body.appendChild(a);
	a.click();
	a.remove();
	setTimeout(() => URL.revokeObjectURL(url), 0);
}`

// DownloadDeliverer hands the export to the browser as a file download.
type DownloadDeliverer struct {
	page *rod.Page
}

// NewDownloadDeliverer creates a deliverer for page. When dir is set the
// browser is told to store downloads there instead of its default folder.
func NewDownloadDeliverer(page *rod.Page, dir string) (*DownloadDeliverer, error) {
	if dir != "" {
		err := proto.BrowserSetDownloadBehavior{
			Behavior:     proto.BrowserSetDownloadBehaviorBehaviorAllow,
			DownloadPath: dir,
		}.Call(page.Browser())
		if err != nil {
			return nil, fmt.Errorf("browser: set download directory: %w", err)
		}
	}
	return &DownloadDeliverer{page: page}, nil
}

// Deliver implements exporter.Deliverer.
func (d *DownloadDeliverer) Deliver(ctx context.Context, artifact models.Artifact) error {
	_, err := d.page.Context(ctx).Eval(downloadScript, artifact.Name, artifact.MIMEType, string(artifact.Data))
	if err != nil {
		return fmt.Errorf("browser: download %s: %w", artifact.Name, err)
	}
	return nil
}
