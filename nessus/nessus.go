package nessus

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sort"
	"strconv"

	"github.com/google/uuid"

	"github.com/cerno-sec/cerno/finding"
)

// ErrNotNessus indicates the input is not a NessusClientData_v2 document.
var ErrNotNessus = errors.New("nessus: not a NessusClientData_v2 document")

// Scan is an imported Nessus scan.
type Scan struct {
	// ID is a fresh identifier assigned at import time.
	ID string `json:"id"`

	// Name is the report name from the export.
	Name string `json:"name"`

	// Findings holds one finding per plugin, aggregated across hosts.
	Findings []*finding.Finding `json:"findings"`
}

// clientData mirrors the subset of NessusClientData_v2 the importer reads.
type clientData struct {
	XMLName xml.Name `xml:"NessusClientData_v2"`
	Report  struct {
		Name  string       `xml:"name,attr"`
		Hosts []reportHost `xml:"ReportHost"`
	} `xml:"Report"`
}

type reportHost struct {
	Name  string       `xml:"name,attr"`
	Items []reportItem `xml:"ReportItem"`
}

type reportItem struct {
	Port       int      `xml:"port,attr"`
	Severity   int      `xml:"severity,attr"`
	PluginID   int      `xml:"pluginID,attr"`
	PluginName string   `xml:"pluginName,attr"`
	CVEs       []string `xml:"cve"`
	CVSS3Score string   `xml:"cvss3_base_score"`
	Metasploit string   `xml:"exploit_framework_metasploit"`
}

// ImportFile imports a .nessus file from disk.
func ImportFile(path string) (*Scan, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("nessus: opening export: %w", err)
	}
	defer f.Close()
	return Import(f)
}

// Import reads a NessusClientData_v2 document and aggregates its report
// items into findings, one per plugin. Findings are ordered by severity
// descending, then plugin ID, matching review display order.
func Import(r io.Reader) (*Scan, error) {
	dec := xml.NewDecoder(r)

	root, err := rootElement(dec)
	if err != nil {
		return nil, err
	}
	if root.Name.Local != "NessusClientData_v2" {
		return nil, fmt.Errorf("%w: root element is <%s>", ErrNotNessus, root.Name.Local)
	}

	var doc clientData
	if err := dec.DecodeElement(&doc, &root); err != nil {
		return nil, fmt.Errorf("nessus: parsing export: %w", err)
	}

	scan := &Scan{
		ID:   uuid.New().String(),
		Name: doc.Report.Name,
	}

	byPlugin := make(map[int]*finding.Finding)
	seenEndpoint := make(map[int]map[string]struct{})
	var order []int

	for _, host := range doc.Report.Hosts {
		for _, item := range host.Items {
			f, ok := byPlugin[item.PluginID]
			if !ok {
				sev, err := finding.SeverityFromLevel(item.Severity)
				if err != nil {
					return nil, fmt.Errorf("nessus: plugin %d: %w", item.PluginID, err)
				}
				f = finding.New(scan.ID, item.PluginID, item.PluginName, sev, nil)
				f.HasMetasploit = item.Metasploit == "true"
				if score, err := strconv.ParseFloat(item.CVSS3Score, 64); err == nil {
					f.CVSS3Score = &score
				}
				byPlugin[item.PluginID] = f
				seenEndpoint[item.PluginID] = make(map[string]struct{})
				order = append(order, item.PluginID)
			}

			line := endpointLine(host.Name, item.Port)
			if _, dup := seenEndpoint[item.PluginID][line]; !dup {
				seenEndpoint[item.PluginID][line] = struct{}{}
				f.Endpoints = append(f.Endpoints, line)
			}
			f.CVEs = mergeCVEs(f.CVEs, item.CVEs)
		}
	}

	for _, id := range order {
		scan.Findings = append(scan.Findings, byPlugin[id])
	}
	sort.SliceStable(scan.Findings, func(i, j int) bool {
		a, b := scan.Findings[i], scan.Findings[j]
		if a.Severity.Level() != b.Severity.Level() {
			return a.Severity.Level() > b.Severity.Level()
		}
		return a.PluginID < b.PluginID
	})

	return scan, nil
}

// rootElement advances the decoder past prolog tokens (declaration,
// comments, DOCTYPE) to the document's root start element.
func rootElement(dec *xml.Decoder) (xml.StartElement, error) {
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return xml.StartElement{}, fmt.Errorf("%w: document has no root element", ErrNotNessus)
		}
		if err != nil {
			return xml.StartElement{}, fmt.Errorf("nessus: parsing export: %w", err)
		}
		if start, ok := tok.(xml.StartElement); ok {
			return start, nil
		}
	}
}

// endpointLine formats one affected host:port. Port 0 means the plugin
// fired against the host itself.
func endpointLine(host string, port int) string {
	if port == 0 {
		return host
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}

func mergeCVEs(existing, more []string) []string {
	for _, cve := range more {
		found := false
		for _, have := range existing {
			if have == cve {
				found = true
				break
			}
		}
		if !found {
			existing = append(existing, cve)
		}
	}
	return existing
}
