package docx

import (
	"encoding/xml"
	"strconv"

	"git.home.luguber.info/inful/notebinder/internal/doctree"
)

const (
	abstractBullet   = 0
	abstractNumbered = 1
	bulletNumID      = 1
)

var bulletGlyphs = []string{"•", "◦", "▪"}

type wNumbering struct {
	XMLName  xml.Name       `xml:"w:numbering"`
	XmlnsW   string         `xml:"xmlns:w,attr"`
	Abstract []wAbstractNum `xml:"w:abstractNum"`
	Nums     []wNum         `xml:"w:num"`
}

type wAbstractNum struct {
	ID         int    `xml:"w:abstractNumId,attr"`
	MultiLevel wVal   `xml:"w:multiLevelType"`
	Levels     []wLvl `xml:"w:lvl"`
}

type wLvl struct {
	Ilvl    int     `xml:"w:ilvl,attr"`
	Start   wVal    `xml:"w:start"`
	NumFmt  wVal    `xml:"w:numFmt"`
	LvlText wVal    `xml:"w:lvlText"`
	LvlJc   wVal    `xml:"w:lvlJc"`
	PPr     wLvlPPr `xml:"w:pPr"`
}

type wLvlPPr struct {
	Ind wInd `xml:"w:ind"`
}

type wInd struct {
	Left    int `xml:"w:left,attr"`
	Hanging int `xml:"w:hanging,attr"`
}

type wNum struct {
	ID            int           `xml:"w:numId,attr"`
	AbstractNumID wVal          `xml:"w:abstractNumId"`
	Override      *wLvlOverride `xml:"w:lvlOverride,omitempty"`
}

type wLvlOverride struct {
	Ilvl  int  `xml:"w:ilvl,attr"`
	Start wVal `xml:"w:startOverride"`
}

// numbering tracks list instances. Bullet lists share one instance; every
// numbered section gets its own so numbering restarts at 1.
type numbering struct {
	nums []wNum
}

func newNumbering() *numbering {
	return &numbering{nums: []wNum{{ID: bulletNumID, AbstractNumID: wVal{Val: strconv.Itoa(abstractBullet)}}}}
}

func (n *numbering) listFor(kind doctree.ListKind) int {
	if kind != doctree.ListNumbered {
		return bulletNumID
	}
	id := len(n.nums) + 1
	n.nums = append(n.nums, wNum{
		ID:            id,
		AbstractNumID: wVal{Val: strconv.Itoa(abstractNumbered)},
		Override:      &wLvlOverride{Ilvl: 0, Start: wVal{Val: "1"}},
	})
	return id
}

func (n *numbering) xml() wNumbering {
	return wNumbering{
		XmlnsW:   nsW,
		Abstract: []wAbstractNum{abstractList(abstractBullet, false), abstractList(abstractNumbered, true)},
		Nums:     n.nums,
	}
}

// abstractList defines nine levels. Numbered lists use decimals on the first
// level only; nested levels (entry bodies) are always bullets.
func abstractList(id int, numbered bool) wAbstractNum {
	a := wAbstractNum{ID: id, MultiLevel: wVal{Val: "hybridMultilevel"}}
	for lvl := 0; lvl < MaxHeadingLevel; lvl++ {
		l := wLvl{
			Ilvl:    lvl,
			Start:   wVal{Val: "1"},
			NumFmt:  wVal{Val: "bullet"},
			LvlText: wVal{Val: bulletGlyphs[lvl%len(bulletGlyphs)]},
			LvlJc:   wVal{Val: "left"},
			PPr:     wLvlPPr{Ind: wInd{Left: 720 * (lvl + 1), Hanging: 360}},
		}
		if numbered && lvl == 0 {
			l.NumFmt = wVal{Val: "decimal"}
			l.LvlText = wVal{Val: "%1."}
		}
		a.Levels = append(a.Levels, l)
	}
	return a
}
